// Package errorx 定义业务错误分类，供应用层返回、接口层映射为 HTTP 状态码
package errorx

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind string

const (
	KindInternal  Kind = "INTERNAL"
	KindNotFound  Kind = "NOT_FOUND"
	KindBadInput  Kind = "BAD_INPUT"
	KindForbidden Kind = "FORBIDDEN"
	KindConflict  Kind = "CONFLICT"
	KindUpstream  Kind = "UPSTREAM"
)

// Error 带分类的业务错误
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap 返回原始错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// New 创建指定分类的错误
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NotFound 资源不存在
func NotFound(format string, args ...any) *Error { return New(KindNotFound, format, args...) }

// BadInput 参数或业务不变量校验失败
func BadInput(format string, args ...any) *Error { return New(KindBadInput, format, args...) }

// Forbidden 无权操作
func Forbidden(format string, args ...any) *Error { return New(KindForbidden, format, args...) }

// Conflict 业务状态冲突
func Conflict(format string, args ...any) *Error { return New(KindConflict, format, args...) }

// Upstream 外部依赖失败
func Upstream(cause error, message string) *Error { return Wrap(KindUpstream, cause, message) }

// KindOf 返回错误分类，非业务错误视为 KindInternal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is 判断错误是否属于指定分类
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message 返回可以直接展示给调用方的信息
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
