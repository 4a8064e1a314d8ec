package notify

import (
	"context"
	"fmt"

	"github.com/Domenick1991/homecare/internal/kafka"
	"go.uber.org/zap"
)

// Dispatcher delivers queued events through a concrete transport. It runs in the worker.
type Dispatcher struct {
	sender   Sender
	rewarder Rewarder
	logger   *zap.Logger
}

func NewDispatcher(sender Sender, rewarder Rewarder, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, rewarder: rewarder, logger: logger}
}

// Deliver never fails the consumer loop: a lost notification is logged and dropped.
func (d *Dispatcher) Deliver(ctx context.Context, event kafka.NotificationEvent) error {
	var err error
	switch event.Type {
	case kafka.EventSMS:
		err = d.sender.Send(ctx, event.Phone, event.Text)
	case kafka.EventAlert:
		err = d.sender.SendAlert(ctx, event.Phone, event.Text)
	case kafka.EventIncentive:
		if d.rewarder == nil {
			err = fmt.Errorf("no rewarder configured")
			break
		}
		err = d.rewarder.Reward(ctx, event.Phone, event.AmountTSh)
	default:
		err = fmt.Errorf("unknown event type %q", event.Type)
	}

	if err != nil {
		d.logger.Warn("notification delivery failed",
			zap.String("id", event.ID),
			zap.String("type", event.Type),
			zap.String("phone", event.Phone),
			zap.Error(err))
		return nil
	}
	d.logger.Info("notification delivered", zap.String("id", event.ID), zap.String("type", event.Type))
	return nil
}
