// Package mysql 文件记录的 GORM 实现
package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/p2pexchange/internal/filestore/domain"
	"github.com/wyfcoding/p2pexchange/pkg/db"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"gorm.io/gorm"
)

// FileObjectModel file_objects 表映射
type FileObjectModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Key          string    `gorm:"column:object_key;type:varchar(255);uniqueIndex;not null"`
	URL          string    `gorm:"column:url;type:varchar(1024);not null"`
	OriginalName string    `gorm:"column:original_name;type:varchar(255)"`
	ContentType  string    `gorm:"column:content_type;type:varchar(128)"`
	Size         int64     `gorm:"column:size;not null"`
	Metadata     string    `gorm:"column:metadata;type:text;comment:JSON"`
	UploadedBy   uint      `gorm:"column:uploaded_by;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

// TableName 指定表名
func (FileObjectModel) TableName() string {
	return "file_objects"
}

// FileRepository domain.FileRepository 的 GORM 实现
type FileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建文件记录仓储
func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

var _ domain.FileRepository = (*FileRepository)(nil)

// Create 插入记录并回填 ID 与创建时间
func (r *FileRepository) Create(ctx context.Context, f *domain.FileObject) error {
	m, err := toModel(f)
	if err != nil {
		return err
	}
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		logger.Error(ctx, "file_repository.create failed", "key", f.Key, "error", err)
		return fmt.Errorf("failed to create file object: %w", err)
	}
	f.ID = m.ID
	f.CreatedAt = m.CreatedAt
	return nil
}

// Get 不存在时返回 nil, nil
func (r *FileRepository) Get(ctx context.Context, id uint) (*domain.FileObject, error) {
	var m FileObjectModel
	if err := db.Conn(ctx, r.db).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "file_repository.get failed", "file_id", id, "error", err)
		return nil, fmt.Errorf("failed to get file object: %w", err)
	}
	return toDomain(&m)
}

func toModel(f *domain.FileObject) (*FileObjectModel, error) {
	m := &FileObjectModel{
		ID:           f.ID,
		Key:          f.Key,
		URL:          f.URL,
		OriginalName: f.OriginalName,
		ContentType:  f.ContentType,
		Size:         f.Size,
		UploadedBy:   f.UploadedBy,
		CreatedAt:    f.CreatedAt,
	}
	if len(f.Metadata) > 0 {
		raw, err := json.Marshal(f.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode file metadata: %w", err)
		}
		m.Metadata = string(raw)
	}
	return m, nil
}

func toDomain(m *FileObjectModel) (*domain.FileObject, error) {
	f := &domain.FileObject{
		ID:           m.ID,
		Key:          m.Key,
		URL:          m.URL,
		OriginalName: m.OriginalName,
		ContentType:  m.ContentType,
		Size:         m.Size,
		UploadedBy:   m.UploadedBy,
		CreatedAt:    m.CreatedAt,
	}
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &f.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode file metadata: %w", err)
		}
	}
	return f, nil
}
