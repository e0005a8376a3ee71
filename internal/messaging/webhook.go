package messaging

import (
	"encoding/json"
	"fmt"
	"io"
)

// webhookEnvelope mirrors the WhatsApp Cloud API webhook payload shape.
type webhookEnvelope struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					ID   string `json:"id"`
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseWebhook extracts inbound message events from a Cloud API webhook
// body. Status-only callbacks yield an empty slice, not an error.
func ParseWebhook(r io.Reader) ([]Inbound, error) {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("messaging: read webhook body: %w", err)
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("messaging: decode webhook body: %w", err)
	}

	var out []Inbound
	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				out = append(out, Inbound{
					MessageID:         msg.ID,
					From:              NormalizePhone(msg.From),
					Body:              msg.Text.Body,
					HasNonTextPayload: msg.Type != "text",
				})
			}
		}
	}
	return out, nil
}
