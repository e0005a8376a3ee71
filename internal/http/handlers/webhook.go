package handlers

import (
	"net/http"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/dialog"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/messaging"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

// Webhook adapts WhatsApp Cloud API callbacks onto the dialogue engine.
type Webhook struct {
	engine      *dialog.Engine
	verifyToken string
	logger      *logging.Logger
}

// NewWebhook wires the webhook endpoints.
func NewWebhook(engine *dialog.Engine, verifyToken string, logger *logging.Logger) *Webhook {
	if logger == nil {
		logger = logging.Default()
	}
	return &Webhook{engine: engine, verifyToken: verifyToken, logger: logger}
}

// Verify answers the Cloud API subscription handshake: echo the
// challenge when mode and token match, 403 otherwise.
func (h *Webhook) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	h.logger.Warn("handlers: webhook verification rejected", "mode", q.Get("hub.mode"))
	w.WriteHeader(http.StatusForbidden)
}

// Receive parses inbound events and feeds each into the dialogue
// engine. The provider expects a prompt 200 regardless of how routing
// went; anything else triggers redelivery storms.
func (h *Webhook) Receive(w http.ResponseWriter, r *http.Request) {
	events, err := messaging.ParseWebhook(r.Body)
	if err != nil {
		h.logger.Error("handlers: webhook payload unreadable", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	for _, ev := range events {
		h.engine.HandleInbound(r.Context(), ev)
	}
	w.WriteHeader(http.StatusOK)
}
