package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultATBaseURL = "https://api.africastalking.com/version1"

type ATOpts struct {
	BaseURL  string
	Username string
	APIKey   string
	SenderID string
	Currency string
}

// ATSender talks to the Africa's Talking messaging and airtime APIs.
type ATSender struct {
	client   *resty.Client
	username string
	senderID string
	currency string
	logger   *zap.Logger
}

type atMessageResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			Number string `json:"number"`
			Status string `json:"status"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

type atAirtimeResponse struct {
	ErrorMessage string `json:"errorMessage"`
	Responses    []struct {
		PhoneNumber  string `json:"phoneNumber"`
		Status       string `json:"status"`
		ErrorMessage string `json:"errorMessage"`
	} `json:"responses"`
}

type atRecipient struct {
	PhoneNumber string `json:"phoneNumber"`
	Amount      string `json:"amount"`
}

func NewATSender(opts ATOpts, logger *zap.Logger) (*ATSender, error) {
	if opts.Username == "" || opts.APIKey == "" {
		return nil, fmt.Errorf("username and api key must be provided")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultATBaseURL
	}
	currency := opts.Currency
	if currency == "" {
		currency = "TZS"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apiKey", opts.APIKey).
		SetHeader("Accept", "application/json")

	return &ATSender{
		client:   client,
		username: opts.Username,
		senderID: opts.SenderID,
		currency: currency,
		logger:   logger,
	}, nil
}

func (s *ATSender) Send(ctx context.Context, phone, text string) error {
	return s.send(ctx, phone, text)
}

func (s *ATSender) SendAlert(ctx context.Context, phone, text string) error {
	return s.send(ctx, phone, "[ALERT] "+text)
}

func (s *ATSender) send(ctx context.Context, phone, text string) error {
	form := map[string]string{
		"username": s.username,
		"to":       phone,
		"message":  text,
	}
	if s.senderID != "" {
		form["from"] = s.senderID
	}

	var out atMessageResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post("/messaging")
	if err != nil {
		return fmt.Errorf("africastalking send to %s: %w", phone, err)
	}
	if resp.IsError() {
		return fmt.Errorf("africastalking send to %s: status %d", phone, resp.StatusCode())
	}
	for _, r := range out.SMSMessageData.Recipients {
		if !strings.EqualFold(r.Status, "Success") {
			return fmt.Errorf("africastalking send to %s: %s", r.Number, r.Status)
		}
	}
	s.logger.Debug("africastalking message sent", zap.String("to", phone))
	return nil
}

// Reward sends airtime worth amountTSh to phone.
func (s *ATSender) Reward(ctx context.Context, phone string, amountTSh int64) error {
	recipients, err := json.Marshal([]atRecipient{{
		PhoneNumber: phone,
		Amount:      fmt.Sprintf("%s %d", s.currency, amountTSh),
	}})
	if err != nil {
		return err
	}

	var out atAirtimeResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username":   s.username,
			"recipients": string(recipients),
		}).
		SetResult(&out).
		Post("/airtime/send")
	if err != nil {
		return fmt.Errorf("africastalking airtime to %s: %w", phone, err)
	}
	if resp.IsError() {
		return fmt.Errorf("africastalking airtime to %s: status %d", phone, resp.StatusCode())
	}
	if out.ErrorMessage != "" && out.ErrorMessage != "None" {
		return fmt.Errorf("africastalking airtime to %s: %s", phone, out.ErrorMessage)
	}
	for _, r := range out.Responses {
		if r.Status == "Failed" {
			return fmt.Errorf("africastalking airtime to %s: %s", r.PhoneNumber, r.ErrorMessage)
		}
	}
	return nil
}
