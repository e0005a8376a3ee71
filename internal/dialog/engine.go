// Package dialog implements the conversational rescheduling and
// cancellation state machine driven by inbound WhatsApp messages.
package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/appointments"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/messaging"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/observability/metrics"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/schedule"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/textgen"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

const (
	defaultReplyDelay  = 5 * time.Second
	defaultHorizonDays = 7
	sendTimeout        = 30 * time.Second
)

// Engine routes inbound messages through the dialogue transition table
// and schedules the resulting replies. Replies are deferred by a fixed
// interval to feel less robotic; the timers run on their own goroutines
// and hold no locks.
type Engine struct {
	store       *appointments.Store
	avail       *schedule.Engine
	states      StateStore
	sender      messaging.Sender
	gen         textgen.Generator
	metrics     *metrics.Metrics
	logger      *logging.Logger
	replyDelay  time.Duration
	horizonDays int
	delayFn     func(d time.Duration, fn func())
}

// NewEngine wires the dialogue engine. gen may be nil; replies then use
// the built-in templates.
func NewEngine(store *appointments.Store, avail *schedule.Engine, states StateStore, sender messaging.Sender, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		store:       store,
		avail:       avail,
		states:      states,
		sender:      sender,
		logger:      logger,
		replyDelay:  defaultReplyDelay,
		horizonDays: defaultHorizonDays,
		delayFn: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// WithGenerator sets the optional text generator for retention prompts.
func (e *Engine) WithGenerator(gen textgen.Generator) *Engine {
	e.gen = gen
	return e
}

// WithMetrics attaches the shared counters.
func (e *Engine) WithMetrics(m *metrics.Metrics) *Engine {
	e.metrics = m
	return e
}

// WithReplyDelay overrides the deferred-send interval.
func (e *Engine) WithReplyDelay(d time.Duration) *Engine {
	e.replyDelay = d
	return e
}

// WithHorizonDays overrides how many days ahead reschedule offers reach.
func (e *Engine) WithHorizonDays(days int) *Engine {
	if days > 0 {
		e.horizonDays = days
	}
	return e
}

// WithDelayFn replaces the timer used for deferred sends. Tests pass a
// synchronous function.
func (e *Engine) WithDelayFn(fn func(d time.Duration, fn func())) *Engine {
	e.delayFn = fn
	return e
}

// HandleInbound processes one inbound message end to end: load state,
// run the transition, persist the new state, schedule replies. Messages
// from unknown phones and non-text payloads are dropped silently.
func (e *Engine) HandleInbound(ctx context.Context, msg messaging.Inbound) {
	phone := messaging.NormalizePhone(msg.From)
	if phone == "" {
		e.metrics.ObserveInbound("ignored_unknown")
		return
	}
	if msg.HasNonTextPayload {
		e.logger.Debug("dialog: ignoring non-text message", "phone", phone)
		e.metrics.ObserveInbound("ignored_non_text")
		return
	}
	appt, ok := e.store.Get(phone)
	if !ok {
		e.logger.Debug("dialog: message from phone with no appointment", "phone", phone)
		e.metrics.ObserveInbound("ignored_unknown")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("dialog: transition panicked, clearing state", "phone", phone, "panic", r)
			if err := e.states.Clear(ctx, phone); err != nil {
				e.logger.Error("dialog: clear state after panic", "phone", phone, "error", err)
			}
			e.replyLater(phone, genericApologyMessage, 0)
		}
	}()

	state, found, err := e.states.Get(ctx, phone)
	if err != nil {
		e.logger.Error("dialog: load state", "phone", phone, "error", err)
	}
	if !found {
		state = State{Phone: phone, Stage: StageIdle}
	}

	text := strings.ToLower(strings.TrimSpace(msg.Body))
	next, replies := e.transition(ctx, state, appt, text)

	if next.Stage == StageIdle {
		if err := e.states.Clear(ctx, phone); err != nil {
			e.logger.Error("dialog: clear state", "phone", phone, "error", err)
		}
	} else {
		if err := e.states.Put(ctx, next); err != nil {
			e.logger.Error("dialog: save state", "phone", phone, "error", err)
		}
	}

	for i, body := range replies {
		e.replyLater(phone, body, i)
	}
	if len(replies) > 0 {
		e.metrics.ObserveInbound("handled")
	} else {
		e.metrics.ObserveInbound("ignored_no_route")
	}
}

// transition is the dialogue routing table. It is pure apart from store
// mutations on the terminal cancel/reschedule actions; all sends happen
// afterwards via the returned replies.
func (e *Engine) transition(ctx context.Context, state State, appt appointments.Appointment, text string) (State, []string) {
	switch state.Stage {
	case StageConfirmingCancellation:
		return e.handleConfirmingCancellation(ctx, state, appt, text)
	case StageSelectingDate:
		return e.handleSelectingDate(state, text)
	case StageSelectingTime:
		return e.handleSelectingTime(ctx, state, appt, text)
	default:
		return e.handleIdle(ctx, state, appt, text)
	}
}

func (e *Engine) handleIdle(ctx context.Context, state State, appt appointments.Appointment, text string) (State, []string) {
	switch {
	case strings.Contains(text, "cancel"):
		retention := textgen.GenerateOrDefault(ctx, e.gen, retentionGenPrompt(appt.Name), retentionPrompt(appt.Name), e.logger)
		state.Stage = StageConfirmingCancellation
		return state, []string{retention, cancellationChoicePrompt}
	case strings.Contains(text, "reschedule"):
		return e.startReschedule(state)
	default:
		return state, nil
	}
}

func (e *Engine) handleConfirmingCancellation(ctx context.Context, state State, appt appointments.Appointment, text string) (State, []string) {
	switch {
	case strings.Contains(text, "confirm"), text == "yes", text == "cancel":
		if _, err := e.store.Cancel(ctx, state.Phone); err != nil {
			e.logger.Error("dialog: cancel appointment", "phone", state.Phone, "error", err)
			state.Stage = StageIdle
			return state, []string{genericApologyMessage}
		}
		e.logger.Info("dialog: appointment cancelled", "phone", state.Phone)
		state.Stage = StageIdle
		return state, []string{cancellationFarewell(appt.Name)}
	case strings.Contains(text, "reschedule"):
		return e.startReschedule(state)
	default:
		return state, []string{cancellationChoicePrompt}
	}
}

func (e *Engine) handleSelectingDate(state State, text string) (State, []string) {
	choice, err := strconv.Atoi(strings.TrimSuffix(text, "."))
	if err != nil || choice < 1 || choice > len(state.OfferedDates) {
		return state, []string{invalidDateChoiceMessage(state.OfferedDates)}
	}
	date := state.OfferedDates[choice-1]
	slots := e.avail.CandidateSlots(date, state.Phone)
	if len(slots) == 0 {
		return state, []string{noSlotsOnDateMessage(state.OfferedDates)}
	}
	state.Stage = StageSelectingTime
	state.SelectedDate = date
	state.OfferedSlots = slots
	return state, []string{slotListMessage(date, slots)}
}

func (e *Engine) handleSelectingTime(ctx context.Context, state State, appt appointments.Appointment, text string) (State, []string) {
	slot, ok := MatchSlot(text, state.OfferedSlots)
	if !ok {
		return state, []string{invalidTimeChoiceMessage(state.SelectedDate, state.OfferedSlots)}
	}
	oldTime, err := e.store.Reschedule(ctx, state.Phone, slot)
	if err != nil {
		e.logger.Error("dialog: reschedule appointment", "phone", state.Phone, "error", err)
		state.Stage = StageIdle
		return state, []string{genericApologyMessage}
	}
	e.logger.Info("dialog: appointment rescheduled", "phone", state.Phone, "from", oldTime, "to", slot)
	state.Stage = StageIdle
	return state, []string{rescheduleConfirmation(appt.Name, oldTime, slot)}
}

func (e *Engine) startReschedule(state State) (State, []string) {
	dates := e.avail.CandidateDates(e.horizonDays)
	if len(dates) == 0 {
		state.Stage = StageIdle
		return state, []string{noDatesAvailableMessage}
	}
	state.Stage = StageSelectingDate
	state.OfferedDates = dates
	state.SelectedDate = time.Time{}
	state.OfferedSlots = nil
	return state, []string{dateListMessage(dates)}
}

// replyLater schedules a deferred send. Multiple replies from the same
// transition are staggered so they arrive in order.
func (e *Engine) replyLater(phone, body string, ordinal int) {
	delay := e.replyDelay * time.Duration(ordinal+1)
	e.delayFn(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		out := messaging.Outbound{
			To:       phone,
			Body:     body,
			Metadata: map[string]string{"message_id": uuid.NewString()},
		}
		if err := e.sender.SendText(ctx, out); err != nil {
			e.logger.Error("dialog: send reply", "phone", phone, "error", err)
			e.metrics.ObserveOutbound("failed")
			return
		}
		e.metrics.ObserveOutbound("sent")
	})
}

func retentionGenPrompt(name string) string {
	return fmt.Sprintf(
		"Write a short, warm WhatsApp message (2 sentences max) for a customer named %s who asked to cancel their appointment. Gently offer to reschedule instead. Do not use emojis or placeholders.",
		name,
	)
}
