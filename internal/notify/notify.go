// Package notify is the outbound side-channel: text messages, operator alerts
// and airtime incentives. Delivery is best-effort.
package notify

import (
	"context"
	"time"

	"github.com/Domenick1991/homecare/internal/kafka"
	"github.com/google/uuid"
)

type Sender interface {
	Send(ctx context.Context, phone, text string) error
	SendAlert(ctx context.Context, phone, text string) error
}

// Rewarder pays a small airtime incentive to a phone.
type Rewarder interface {
	Reward(ctx context.Context, phone string, amountTSh int64) error
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Queue hands notifications to the worker through a Kafka topic.
type Queue struct {
	producer Publisher
	topic    string
	now      func() time.Time
}

func NewQueue(producer Publisher, topic string) *Queue {
	return &Queue{producer: producer, topic: topic, now: time.Now}
}

func (q *Queue) Send(ctx context.Context, phone, text string) error {
	return q.publish(ctx, kafka.NotificationEvent{Type: kafka.EventSMS, Phone: phone, Text: text})
}

func (q *Queue) SendAlert(ctx context.Context, phone, text string) error {
	return q.publish(ctx, kafka.NotificationEvent{Type: kafka.EventAlert, Phone: phone, Text: text})
}

func (q *Queue) Reward(ctx context.Context, phone string, amountTSh int64) error {
	return q.publish(ctx, kafka.NotificationEvent{Type: kafka.EventIncentive, Phone: phone, AmountTSh: amountTSh})
}

func (q *Queue) publish(ctx context.Context, event kafka.NotificationEvent) error {
	event.ID = uuid.NewString()
	event.CreatedAt = q.now()
	return q.producer.Publish(ctx, q.topic, event.Phone, event)
}

var (
	_ Sender   = (*Queue)(nil)
	_ Rewarder = (*Queue)(nil)
)
