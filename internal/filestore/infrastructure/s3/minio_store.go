// Package s3 S3 兼容对象存储适配，调用经熔断器保护
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sony/gobreaker"
	"github.com/wyfcoding/p2pexchange/internal/filestore/domain"
	"github.com/wyfcoding/p2pexchange/pkg/config"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
)

// MinioStore domain.BlobStore 的 minio-go 实现
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	breaker *gobreaker.CircuitBreaker
}

// NewMinioStore 创建对象存储客户端
func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s/%s", client.EndpointURL().String(), cfg.Bucket),
		breaker: newBreaker("object-store"),
	}, nil
}

// newBreaker 连续 5 次失败后熔断 30 秒；对象不存在不计为失败
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrObjectNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

var _ domain.BlobStore = (*MinioStore)(nil)

// Put 上传对象，返回对象 URL
func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

// Get 读取对象，先 Stat 以便区分不存在与其他错误
func (s *MinioStore) Get(ctx context.Context, key string) (*domain.Object, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, classify(err)
		}
		info, err := obj.Stat()
		if err != nil {
			_ = obj.Close()
			return nil, classify(err)
		}
		return &domain.Object{Body: obj, ContentType: info.ContentType, Size: info.Size}, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return res.(*domain.Object), nil
}

func classify(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return domain.ErrObjectNotFound
	}
	return err
}
