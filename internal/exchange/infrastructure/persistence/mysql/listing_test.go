package mysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchArgsEscapeWildcards(t *testing.T) {
	listing := ListingSpec{Table: "sell_orders"}

	cases := map[string]string{
		"GTB":      `%gtb%`,
		"%":        `%\%%`,
		"50%_off":  `%50\%\_off%`,
		`a\b`:      `%a\\b%`,
		"first_na": `%first\_na%`,
	}
	for search, want := range cases {
		args := listing.searchArgs(search)
		require.Len(t, args, len(listing.searchColumns()), search)
		for _, a := range args {
			assert.Equal(t, want, a, search)
		}
	}
}

func TestSearchClauseDeclaresEscape(t *testing.T) {
	listing := ListingSpec{Table: "buy_orders", ExtendedSearch: true}
	clause := listing.searchClause()

	assert.True(t, strings.HasPrefix(clause, "(LOWER(users.first_name) LIKE ? ESCAPE '\\\\' OR "))
	assert.Equal(t, len(listing.searchColumns()), strings.Count(clause, `LIKE ? ESCAPE '\\'`))
}
