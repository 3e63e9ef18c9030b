// Package sender 推送的投递实现
package sender

import (
	"context"
	"strconv"

	"github.com/wyfcoding/p2pexchange/internal/notification/domain"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
)

// MessageProducer Kafka 生产者抽象，由 mq.KafkaProducer 实现
type MessageProducer interface {
	SendMessage(ctx context.Context, topic string, key string, value interface{}) error
}

// KafkaSender 把推送写入 Kafka，由推送网关消费后发到设备
type KafkaSender struct {
	producer MessageProducer
	topic    string
}

// NewKafkaSender 创建 Kafka 推送发送器
func NewKafkaSender(producer MessageProducer, topic string) *KafkaSender {
	return &KafkaSender{
		producer: producer,
		topic:    topic,
	}
}

// Notify 以用户 ID 作为 key，保证同一用户的推送有序
func (s *KafkaSender) Notify(ctx context.Context, push domain.Push) error {
	return s.producer.SendMessage(ctx, s.topic, strconv.FormatUint(uint64(push.UserID), 10), push)
}

// LogSender 未配置 Kafka 时只记录日志
type LogSender struct{}

// NewLogSender 创建日志推送发送器
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Notify 记录推送内容
func (s *LogSender) Notify(ctx context.Context, push domain.Push) error {
	logger.Info(ctx, "Push notification (log only)",
		"user_id", push.UserID,
		"type", push.Type,
		"title", push.Title,
	)
	return nil
}
