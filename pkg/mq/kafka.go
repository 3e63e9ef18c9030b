// Package mq Kafka 生产者，消息体为 JSON，按 key 哈希分区
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"go.opentelemetry.io/otel/trace"
)

// HeaderTraceID 链路 ID 消息头，消费方据此串联日志
const HeaderTraceID = "trace-id"

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers []string
	// MaxRetries 单条消息最大尝试次数
	MaxRetries int
	// RetryBackoff 重试退避下限（毫秒）
	RetryBackoff int
}

// KafkaProducer Kafka 生产者
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewProducer 创建生产者，要求所有副本确认
func NewProducer(cfg KafkaConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	backoff := time.Duration(cfg.RetryBackoff) * time.Millisecond

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            attempts,
		WriteBackoffMin:        backoff,
		WriteBackoffMax:        10 * backoff,
		BatchTimeout:           10 * time.Millisecond,
	}

	logger.Info(context.Background(), "Kafka producer created", "brokers", cfg.Brokers)
	return &KafkaProducer{writer: writer}, nil
}

// SendMessage 同步写入单条消息
func (kp *KafkaProducer) SendMessage(ctx context.Context, topic string, key string, value interface{}) error {
	msg, err := buildMessage(ctx, topic, key, value)
	if err != nil {
		return err
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error(ctx, "Kafka write failed", "topic", topic, "key", key, "error", err)
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}

	logger.Debug(ctx, "Kafka message sent", "topic", topic, "key", key)
	return nil
}

func buildMessage(ctx context.Context, topic, key string, value interface{}) (kafka.Message, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}
	msg := kafka.Message{Topic: topic, Key: []byte(key), Value: data}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		msg.Headers = append(msg.Headers, kafka.Header{Key: HeaderTraceID, Value: []byte(sc.TraceID().String())})
	}
	return msg, nil
}

// Close 刷出缓冲并关闭
func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}
