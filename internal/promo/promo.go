// Package promo sends hook messages to previously uninterested contacts
// when an import brings genuinely new customers in.
package promo

import (
	"context"
	"fmt"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/messaging"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/observability/metrics"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/storage"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/textgen"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

// Notifier delivers one hook message per uninterested contact per import
// batch that contained at least one never-seen-before phone.
type Notifier struct {
	status  *storage.StatusStore
	sender  messaging.Sender
	gen     textgen.Generator
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewNotifier wires the promo notifier. gen may be nil.
func NewNotifier(status *storage.StatusStore, sender messaging.Sender, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{status: status, sender: sender, logger: logger}
}

// WithGenerator sets the optional text generator for hook messages.
func (n *Notifier) WithGenerator(gen textgen.Generator) *Notifier {
	n.gen = gen
	return n
}

// WithMetrics attaches the shared counters.
func (n *Notifier) WithMetrics(m *metrics.Metrics) *Notifier {
	n.metrics = m
	return n
}

// Announce sends hook messages to every contact marked uninterested,
// provided the triggering import actually introduced new phones. Returns
// the number of messages sent; per-contact failures are logged and
// skipped.
func (n *Notifier) Announce(ctx context.Context, newPhones []string) int {
	if len(newPhones) == 0 {
		return 0
	}
	sent := 0
	targets := n.status.Uninterested()
	for _, rec := range targets {
		phone := messaging.NormalizePhone(rec.Phone)
		if phone == "" {
			continue
		}
		body := textgen.GenerateOrDefault(ctx, n.gen, hookPrompt(rec.Name), hookFallback(rec.Name), n.logger)
		if err := n.sender.SendText(ctx, messaging.Outbound{To: phone, Body: body}); err != nil {
			n.logger.Error("promo: send hook failed", "phone", phone, "error", err)
			n.metrics.ObserveOutbound("failed")
			continue
		}
		n.metrics.ObserveOutbound("sent")
		sent++
	}
	if sent > 0 {
		n.logger.Info("promo: hook messages sent", "count", sent, "new_phones", len(newPhones))
	}
	return sent
}

func hookFallback(name string) string {
	return fmt.Sprintf(
		"Hi %s! New customers have been booking with us this week and we'd love to have you back. Reply to this message and we'll find a slot that suits you.",
		name,
	)
}

func hookPrompt(name string) string {
	return fmt.Sprintf(
		"Write a short, friendly WhatsApp message (2 sentences max) inviting %s, a past contact who previously declined, to book an appointment again. Mention that new customers have recently joined. No emojis, no placeholders.",
		name,
	)
}
