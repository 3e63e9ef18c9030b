// Package domain 推送通知的领域模型
package domain

import "context"

// PushType 推送类型
type PushType string

const (
	PushNegotiationRequested PushType = "NEGOTIATION_REQUESTED"
)

// Push 发给单个用户的推送
type Push struct {
	UserID uint              `json:"user_id"`
	Type   PushType          `json:"type"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// Notifier 推送发送接口，调用方只记录失败不回滚主流程
type Notifier interface {
	Notify(ctx context.Context, push Push) error
}
