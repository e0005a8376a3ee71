package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudAPISenderSendText(t *testing.T) {
	var gotPath string
	var gotAuth string
	var gotPayload map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"messages":[{"id":"wamid.test123"}]}`))
	}))
	defer srv.Close()

	sender := NewCloudAPISender("secret-token", "123456", nil).WithBaseURL(srv.URL)
	meta := map[string]string{}
	err := sender.SendText(context.Background(), Outbound{
		To:       "911234567890",
		Body:     "hello",
		Metadata: meta,
	})
	require.NoError(t, err)

	assert.Equal(t, "/123456/messages", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "whatsapp", gotPayload["messaging_product"])
	assert.Equal(t, "911234567890", gotPayload["to"])
	assert.Equal(t, "wamid.test123", meta["provider_message_id"])
}

func TestCloudAPISenderRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"messages":[{"id":"wamid.retry"}]}`))
	}))
	defer srv.Close()

	sender := NewCloudAPISender("tok", "42", nil).WithBaseURL(srv.URL)
	err := sender.SendText(context.Background(), Outbound{To: "911234567890", Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCloudAPISenderGivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewCloudAPISender("tok", "42", nil).WithBaseURL(srv.URL)
	err := sender.SendText(context.Background(), Outbound{To: "911234567890", Body: "hi"})
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCloudAPISenderValidation(t *testing.T) {
	tests := []struct {
		name   string
		sender *CloudAPISender
		msg    Outbound
	}{
		{"missing token", NewCloudAPISender("", "42", nil), Outbound{To: "91", Body: "x"}},
		{"missing phone id", NewCloudAPISender("tok", "", nil), Outbound{To: "91", Body: "x"}},
		{"missing to", NewCloudAPISender("tok", "42", nil), Outbound{Body: "x"}},
		{"blank body", NewCloudAPISender("tok", "42", nil), Outbound{To: "91", Body: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.sender.SendText(context.Background(), tt.msg))
		})
	}
}
