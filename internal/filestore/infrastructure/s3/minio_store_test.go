package s3

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/wyfcoding/p2pexchange/internal/filestore/domain"
)

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}), domain.ErrObjectNotFound)

	other := minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}
	assert.False(t, errors.Is(classify(other), domain.ErrObjectNotFound))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := newBreaker("test")
	boom := errors.New("connection refused")

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, boom })
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (interface{}, error) { return "unreachable", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerIgnoresMissingObjects(t *testing.T) {
	cb := newBreaker("test")
	for i := 0; i < 10; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, domain.ErrObjectNotFound })
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
