package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

var cloudAPITracer = otel.Tracer("wareminder.internal.messaging.cloudapi")

const defaultGraphBaseURL = "https://graph.facebook.com/v18.0"

// CloudAPISender posts text messages through the WhatsApp Cloud API.
type CloudAPISender struct {
	token      string
	phoneID    string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewCloudAPISender builds a sender for the WhatsApp Cloud API.
func NewCloudAPISender(token, phoneID string, logger *logging.Logger) *CloudAPISender {
	if logger == nil {
		logger = logging.Default()
	}
	return &CloudAPISender{
		token:   token,
		phoneID: phoneID,
		baseURL: defaultGraphBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// WithBaseURL overrides the Graph API base URL. Tests point this at an
// httptest server.
func (s *CloudAPISender) WithBaseURL(baseURL string) *CloudAPISender {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

var _ Sender = (*CloudAPISender)(nil)

// SendText dispatches a single text message, retrying transient failures
// up to three attempts with jittered backoff.
func (s *CloudAPISender) SendText(ctx context.Context, msg Outbound) error {
	if s.token == "" {
		return errors.New("messaging: whatsapp token missing")
	}
	if s.phoneID == "" {
		return errors.New("messaging: whatsapp phone id missing")
	}
	if msg.To == "" {
		return errors.New("messaging: to required")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := cloudAPITracer.Start(ctx, "messaging.cloudapi.send")
	defer span.End()
	span.SetAttributes(attribute.String("wareminder.to", msg.To))

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                msg.To,
		"type":              "text",
		"text":              map[string]string{"body": msg.Body},
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneID)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("messaging: failed to marshal cloud api payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Authorization", "Bearer "+s.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if msg.Metadata != nil && len(body) > 0 {
					var parsed struct {
						Messages []struct {
							ID string `json:"id"`
						} `json:"messages"`
					}
					if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Messages) > 0 {
						msg.Metadata["provider_message_id"] = parsed.Messages[0].ID
					}
				}
				s.logger.Info("whatsapp message sent", "to", msg.To)
				return nil
			}
			var errorBody map[string]interface{}
			if len(body) > 0 && json.Unmarshal(body, &errorBody) == nil {
				lastErr = fmt.Errorf("cloud api send failed: status %d, body: %v", resp.StatusCode, errorBody)
			} else {
				lastErr = fmt.Errorf("cloud api send failed: status %d", resp.StatusCode)
			}
		}

		if attempt < 3 {
			sleep := time.Duration(200+rand.Intn(300)) * time.Millisecond
			time.Sleep(sleep)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		s.logger.Error("failed to send whatsapp message", "error", lastErr, "to", msg.To)
	}
	return lastErr
}
