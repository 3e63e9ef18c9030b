// Package response 统一 HTTP 响应信封
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
)

// Envelope 单条结果
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ListEnvelope 分页列表结果
type ListEnvelope struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Data        any    `json:"data"`
	Count       int64  `json:"count"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int64  `json:"totalPages"`
	Timestamp   string `json:"timestamp"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Success 200 成功响应
func Success(c *gin.Context, message string, data any) {
	SuccessWithStatus(c, http.StatusOK, message, data)
}

// Created 201 成功响应
func Created(c *gin.Context, message string, data any) {
	SuccessWithStatus(c, http.StatusCreated, message, data)
}

// SuccessWithStatus 指定状态码的成功响应
func SuccessWithStatus(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: now(),
	})
}

// List 分页列表响应
func List(c *gin.Context, message string, data any, count int64, currentPage int, totalPages int64) {
	c.JSON(http.StatusOK, ListEnvelope{
		Success:     true,
		Message:     message,
		Data:        data,
		Count:       count,
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		Timestamp:   now(),
	})
}

// ErrorWithStatus 指定状态码的错误响应
func ErrorWithStatus(c *gin.Context, status int, message string, kind errorx.Kind) {
	c.AbortWithStatusJSON(status, Envelope{
		Success:   false,
		Message:   message,
		Error:     string(kind),
		Timestamp: now(),
	})
}

// Error 按错误分类映射状态码；非业务错误只返回通用信息
func Error(c *gin.Context, err error) {
	kind := errorx.KindOf(err)
	status := StatusOf(kind)
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			"path", c.FullPath(),
			"error", err,
		)
		ErrorWithStatus(c, status, "internal server error", kind)
		return
	}
	ErrorWithStatus(c, status, errorx.Message(err), kind)
}

// StatusOf 错误分类对应的 HTTP 状态码
func StatusOf(kind errorx.Kind) int {
	switch kind {
	case errorx.KindNotFound:
		return http.StatusNotFound
	case errorx.KindBadInput:
		return http.StatusBadRequest
	case errorx.KindForbidden:
		return http.StatusForbidden
	case errorx.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
