// Package domain 文件存储：对象存储中的文件与其元数据记录
package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound 对象存储中不存在该对象
var ErrObjectNotFound = errors.New("object not found")

// FileObject 已上传文件的元数据记录
type FileObject struct {
	ID           uint
	Key          string
	URL          string
	OriginalName string
	ContentType  string
	Size         int64
	// Metadata 上传方提供的任意 JSON 对象
	Metadata   map[string]any
	UploadedBy uint
	CreatedAt  time.Time
}

// Object 从对象存储读取的内容，调用方负责关闭 Body
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// BlobStore 对象存储端口
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Get 对象不存在时返回 ErrObjectNotFound
	Get(ctx context.Context, key string) (*Object, error)
}

// FileRepository 文件记录仓储，不存在时返回 nil, nil
type FileRepository interface {
	Create(ctx context.Context, f *FileObject) error
	Get(ctx context.Context, id uint) (*FileObject, error)
}
