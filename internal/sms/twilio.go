package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

type TwilioOpts struct {
	AccountSID string
	AuthToken  string
	From       string
	AlertFrom  string
}

// TwilioSender delivers plain SMS through the Twilio REST API.
type TwilioSender struct {
	client    *twilio.RestClient
	from      string
	alertFrom string
	logger    *zap.Logger
}

func NewTwilioSender(opts TwilioOpts, logger *zap.Logger) (*TwilioSender, error) {
	if opts.AccountSID == "" || opts.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if opts.From == "" {
		return nil, fmt.Errorf("from number must be provided")
	}
	alertFrom := opts.AlertFrom
	if alertFrom == "" {
		alertFrom = opts.From
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: opts.AccountSID,
		Password: opts.AuthToken,
	})
	return &TwilioSender{client: client, from: opts.From, alertFrom: alertFrom, logger: logger}, nil
}

func (s *TwilioSender) Send(ctx context.Context, phone, text string) error {
	return s.send(phone, s.from, text)
}

func (s *TwilioSender) SendAlert(ctx context.Context, phone, text string) error {
	return s.send(phone, s.alertFrom, "[ALERT] "+text)
}

func (s *TwilioSender) send(to, from, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	if resp.Sid != nil {
		s.logger.Debug("twilio message sent", zap.String("to", to), zap.String("sid", *resp.Sid))
	}
	return nil
}
