package messaging

import "context"

// Outbound carries the data required to push a text message to a contact.
type Outbound struct {
	To       string // digits-only contact identifier
	Body     string
	Metadata map[string]string
}

// Inbound is a message event received from the chat transport.
type Inbound struct {
	MessageID string
	From      string // digits-only contact identifier
	Body      string
	// HasNonTextPayload is true for media, stickers, locations and other
	// non-text message types. The core ignores these events.
	HasNonTextPayload bool
}

// Sender delivers text messages to contacts.
type Sender interface {
	SendText(ctx context.Context, msg Outbound) error
}
