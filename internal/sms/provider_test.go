package sms

import (
	"context"
	"testing"

	"github.com/Domenick1991/homecare/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Providers(t *testing.T) {
	logger := zap.NewNop()

	sender, rewarder, err := New(config.SMSConfig{Provider: ProviderLog}, logger)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, sender)
	assert.NotNil(t, rewarder)

	sender, rewarder, err = New(config.SMSConfig{
		Provider:       ProviderAfricasTalking,
		AfricasTalking: config.AfricasTalkingConfig{Username: "sandbox", APIKey: "key"},
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &ATSender{}, sender)
	assert.NotNil(t, rewarder)

	sender, rewarder, err = New(config.SMSConfig{
		Provider: ProviderTwilio,
		Twilio:   config.TwilioConfig{AccountSID: "AC1", AuthToken: "t", From: "+15550001"},
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &TwilioSender{}, sender)
	assert.Nil(t, rewarder)

	_, _, err = New(config.SMSConfig{Provider: ProviderTwilio}, logger)
	assert.Error(t, err)

	_, _, err = New(config.SMSConfig{Provider: "pigeon"}, logger)
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, s.Send(ctx, "+255712345678", "hello"))
	assert.NoError(t, s.SendAlert(ctx, "+255712345678", "down"))
	assert.NoError(t, s.Reward(ctx, "+255712345678", 500))
}
