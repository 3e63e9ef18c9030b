package errorx

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(io.EOF))
	assert.Equal(t, KindNotFound, KindOf(NotFound("sell order %d not found", 3)))

	wrapped := fmt.Errorf("service: %w", Conflict("already cancelled"))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
	assert.False(t, Is(nil, KindConflict))
}

func TestUpstreamKeepsCause(t *testing.T) {
	err := Upstream(io.ErrUnexpectedEOF, "failed to store file")

	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "[UPSTREAM] failed to store file: unexpected EOF", err.Error())
	assert.Equal(t, "failed to store file", Message(err))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "invalid id: abc", Message(BadInput("invalid id: %s", "abc")))
	assert.Equal(t, "internal server error", Message(errors.New("dial tcp 10.0.0.1:3306")))
}
