package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewATSender_RequiresCredentials(t *testing.T) {
	_, err := NewATSender(ATOpts{Username: "sandbox"}, zap.NewNop())
	assert.Error(t, err)
}

func TestATSender_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messaging", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apiKey"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "sandbox", r.PostForm.Get("username"))
		assert.Equal(t, "+255712345678", r.PostForm.Get("to"))
		assert.Equal(t, "Karibu", r.PostForm.Get("message"))
		assert.Equal(t, "HOMECARE", r.PostForm.Get("from"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"SMSMessageData": map[string]any{
				"Message":    "Sent to 1/1",
				"Recipients": []map[string]string{{"number": "+255712345678", "status": "Success"}},
			},
		})
	}))
	defer srv.Close()

	sender, err := NewATSender(ATOpts{BaseURL: srv.URL, Username: "sandbox", APIKey: "secret", SenderID: "HOMECARE"}, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, sender.Send(context.Background(), "+255712345678", "Karibu"))
}

func TestATSender_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"SMSMessageData": map[string]any{
				"Recipients": []map[string]string{{"number": "+255712345678", "status": "InvalidPhoneNumber"}},
			},
		})
	}))
	defer srv.Close()

	sender, err := NewATSender(ATOpts{BaseURL: srv.URL, Username: "sandbox", APIKey: "secret"}, zap.NewNop())
	require.NoError(t, err)

	err = sender.Send(context.Background(), "+255712345678", "Karibu")
	assert.ErrorContains(t, err, "InvalidPhoneNumber")
}

func TestATSender_Reward(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/airtime/send", r.URL.Path)
		require.NoError(t, r.ParseForm())

		var recipients []atRecipient
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("recipients")), &recipients))
		assert.Equal(t, []atRecipient{{PhoneNumber: "+255712345678", Amount: "TZS 500"}}, recipients)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errorMessage": "None",
			"responses":    []map[string]string{{"phoneNumber": "+255712345678", "status": "Sent"}},
		})
	}))
	defer srv.Close()

	sender, err := NewATSender(ATOpts{BaseURL: srv.URL, Username: "sandbox", APIKey: "secret"}, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, sender.Reward(context.Background(), "+255712345678", 500))
}

func TestATSender_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender, err := NewATSender(ATOpts{BaseURL: srv.URL, Username: "sandbox", APIKey: "bad"}, zap.NewNop())
	require.NoError(t, err)

	assert.ErrorContains(t, sender.Send(context.Background(), "+255712345678", "x"), "status 401")
}
