// Package application 文件上传、下载与元数据查询
package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wyfcoding/p2pexchange/internal/filestore/domain"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"github.com/wyfcoding/p2pexchange/pkg/metrics"
	"github.com/wyfcoding/pkg/idgen"
)

// UploadCommand 上传请求
type UploadCommand struct {
	UserID       uint
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader
	// Metadata 可选的 JSON 对象字符串
	Metadata string
}

// FileDTO 文件元数据
type FileDTO struct {
	ID           uint           `json:"id"`
	Key          string         `json:"key"`
	URL          string         `json:"url"`
	OriginalName string         `json:"originalName"`
	ContentType  string         `json:"contentType"`
	Size         int64          `json:"size"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	UploadedBy   uint           `json:"uploadedBy"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// FileService 文件服务
type FileService struct {
	blobs    domain.BlobStore
	repo     domain.FileRepository
	maxBytes int64
	metrics  *metrics.Metrics
}

// NewFileService 创建文件服务，maxBytes<=0 表示不限制
func NewFileService(blobs domain.BlobStore, repo domain.FileRepository, maxBytes int64, m *metrics.Metrics) *FileService {
	return &FileService{blobs: blobs, repo: repo, maxBytes: maxBytes, metrics: m}
}

// MaxBytes 单个文件大小上限
func (s *FileService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload 先写对象存储再落库
func (s *FileService) Upload(ctx context.Context, cmd UploadCommand) (*FileDTO, error) {
	if cmd.Size <= 0 {
		return nil, errorx.BadInput("file is empty")
	}
	if s.maxBytes > 0 && cmd.Size > s.maxBytes {
		return nil, errorx.BadInput("file exceeds maximum size of %d bytes", s.maxBytes)
	}

	var meta map[string]any
	if strings.TrimSpace(cmd.Metadata) != "" {
		if err := json.Unmarshal([]byte(cmd.Metadata), &meta); err != nil {
			return nil, errorx.BadInput("metadata must be a JSON object")
		}
	}

	contentType := cmd.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := objectKey(cmd.OriginalName)

	url, err := s.blobs.Put(ctx, key, cmd.Body, cmd.Size, contentType)
	if err != nil {
		logger.Error(ctx, "Object upload failed", "key", key, "error", err)
		return nil, errorx.Upstream(err, "failed to store file")
	}

	f := &domain.FileObject{
		Key:          key,
		URL:          url,
		OriginalName: cmd.OriginalName,
		ContentType:  contentType,
		Size:         cmd.Size,
		Metadata:     meta,
		UploadedBy:   cmd.UserID,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		// 对象已写入但无记录，留 key 供对账清理
		logger.Error(ctx, "File record create failed, object orphaned", "key", key, "user_id", cmd.UserID, "error", err)
		return nil, err
	}

	s.metrics.RecordFileUploaded()
	logger.Info(ctx, "File uploaded", "file_id", f.ID, "key", key, "size", f.Size, "user_id", cmd.UserID)
	return toDTO(f), nil
}

// objectKey 雪花 ID 加小写扩展名
func objectKey(originalName string) string {
	return strconv.FormatUint(idgen.GenID(), 10) + strings.ToLower(filepath.Ext(originalName))
}

// Download 返回对象内容与记录，调用方负责关闭 Body
func (s *FileService) Download(ctx context.Context, id uint) (*domain.Object, *FileDTO, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.blobs.Get(ctx, f.Key)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return nil, nil, errorx.NotFound("file %d not found", id)
		}
		return nil, nil, errorx.Upstream(err, "failed to read file")
	}
	if obj.ContentType == "" {
		obj.ContentType = f.ContentType
	}
	return obj, toDTO(f), nil
}

// Metadata 查询文件记录
func (s *FileService) Metadata(ctx context.Context, id uint) (*FileDTO, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(f), nil
}

func (s *FileService) load(ctx context.Context, id uint) (*domain.FileObject, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errorx.NotFound("file %d not found", id)
	}
	return f, nil
}

func toDTO(f *domain.FileObject) *FileDTO {
	return &FileDTO{
		ID:           f.ID,
		Key:          f.Key,
		URL:          f.URL,
		OriginalName: f.OriginalName,
		ContentType:  f.ContentType,
		Size:         f.Size,
		Metadata:     f.Metadata,
		UploadedBy:   f.UploadedBy,
		CreatedAt:    f.CreatedAt,
	}
}
