package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume decodes notification events and hands them to handler until ctx ends.
// Undecodable messages are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, NotificationEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var event NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Warn("skip undecodable notification", zap.Error(err), zap.Int64("offset", msg.Offset))
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}
