package sms

import (
	"context"
	"fmt"

	"github.com/Domenick1991/homecare/config"
	"github.com/Domenick1991/homecare/internal/notify"
	"go.uber.org/zap"
)

const (
	ProviderTwilio         = "twilio"
	ProviderAfricasTalking = "africastalking"
	ProviderLog            = "log"
)

// New builds the configured transport. The rewarder is nil when the provider
// cannot send airtime.
func New(cfg config.SMSConfig, logger *zap.Logger) (notify.Sender, notify.Rewarder, error) {
	switch cfg.Provider {
	case ProviderTwilio:
		s, err := NewTwilioSender(TwilioOpts{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			From:       cfg.Twilio.From,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case ProviderAfricasTalking:
		s, err := NewATSender(ATOpts{
			BaseURL:  cfg.AfricasTalking.BaseURL,
			Username: cfg.AfricasTalking.Username,
			APIKey:   cfg.AfricasTalking.APIKey,
			SenderID: cfg.AfricasTalking.SenderID,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case ProviderLog, "":
		s := NewLogSender(logger)
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown sms provider %q", cfg.Provider)
	}
}

// LogSender only writes outbound messages to the log. Used in development.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, phone, text string) error {
	s.logger.Info("sms", zap.String("to", phone), zap.String("text", text))
	return nil
}

func (s *LogSender) SendAlert(_ context.Context, phone, text string) error {
	s.logger.Warn("sms alert", zap.String("to", phone), zap.String("text", text))
	return nil
}

func (s *LogSender) Reward(_ context.Context, phone string, amountTSh int64) error {
	s.logger.Info("airtime", zap.String("to", phone), zap.Int64("amount_tsh", amountTSh))
	return nil
}

var (
	_ notify.Sender   = (*TwilioSender)(nil)
	_ notify.Sender   = (*ATSender)(nil)
	_ notify.Rewarder = (*ATSender)(nil)
	_ notify.Sender   = (*LogSender)(nil)
	_ notify.Rewarder = (*LogSender)(nil)
)
