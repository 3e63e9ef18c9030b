// Package http 文件存储 HTTP 接口
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	exchangehttp "github.com/wyfcoding/p2pexchange/internal/exchange/interfaces/http"
	"github.com/wyfcoding/p2pexchange/internal/filestore/application"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/response"
)

// multipart 头部与其他表单字段的余量
const formOverhead = 1 << 20

// FileHandler 文件 HTTP 处理器
type FileHandler struct {
	svc *application.FileService
}

// NewFileHandler 创建文件处理器
func NewFileHandler(svc *application.FileService) *FileHandler {
	return &FileHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *FileHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/filestore")
	{
		api.POST("", h.Upload)
		api.GET("/:id", h.Download)
		api.GET("/:id/metadata", h.Metadata)
	}
}

// Upload 接收 multipart 字段 file 与可选的 metadata，请求体超限返回 400
func (h *FileHandler) Upload(c *gin.Context) {
	if limit := h.svc.MaxBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, errorx.BadInput("file exceeds maximum size of %d bytes", h.svc.MaxBytes()))
			return
		}
		response.Error(c, errorx.BadInput("file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, errorx.BadInput("unreadable file: %v", err))
		return
	}
	defer file.Close()

	dto, err := h.svc.Upload(c.Request.Context(), application.UploadCommand{
		UserID:       exchangehttp.CurrentUser(c),
		OriginalName: header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		Body:         file,
		Metadata:     c.PostForm("metadata"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "File uploaded successfully", dto)
}

// Download 以存储的内容类型流式返回文件
func (h *FileHandler) Download(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	obj, meta, err := h.svc.Download(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer obj.Body.Close()

	extra := map[string]string{
		"Content-Disposition": "inline; filename=" + strconv.Quote(meta.OriginalName),
	}
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, extra)
}

// Metadata 返回文件记录，不含内容
func (h *FileHandler) Metadata(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	dto, err := h.svc.Metadata(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "File metadata retrieved successfully", dto)
}
