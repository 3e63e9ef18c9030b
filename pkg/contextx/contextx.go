// Package contextx 提供请求级上下文字段（事务、trace_id、request_id、当前用户）的存取
package contextx

import "context"

type contextKey string

const (
	txKey        contextKey = "tx"
	traceIDKey   contextKey = "trace_id"
	spanIDKey    contextKey = "span_id"
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// WithTx 将事务句柄放入 context，仓储层通过 GetTx 取出
func WithTx(ctx context.Context, tx any) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTx 获取 context 中的事务句柄，不存在时返回 nil
func GetTx(ctx context.Context) any {
	if ctx == nil {
		return nil
	}
	return ctx.Value(txKey)
}

// WithTraceID 写入 trace_id
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID 读取 trace_id
func TraceID(ctx context.Context) string {
	return stringValue(ctx, traceIDKey)
}

// WithSpanID 写入 span_id
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey, spanID)
}

// SpanID 读取 span_id
func SpanID(ctx context.Context) string {
	return stringValue(ctx, spanIDKey)
}

// WithRequestID 写入 request_id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID 读取 request_id
func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithUserID 写入已认证用户 ID
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID 读取已认证用户 ID
func UserID(ctx context.Context) (uint, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok && id != 0
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
