// Package reminder runs the recurring tick that decides, for every
// appointment, whether a reminder is due right now.
package reminder

import (
	"context"
	"time"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/appointments"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/messaging"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/observability/metrics"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/schedule"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/textgen"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

const (
	defaultTick            = time.Minute
	defaultNearTermLead    = 5 * time.Hour
	defaultCountdownWindow = 7
)

var defaultCountdownAt = schedule.TimeOfDay{Hour: 11, Minute: 30}

// Scheduler evaluates the countdown and near-term reminder rules on a
// fixed tick. Rules are level-triggered against wall-clock time; there
// is no persisted sent-marker, so dedupe relies on the trigger condition
// holding for exactly one tick.
type Scheduler struct {
	store           *appointments.Store
	sender          messaging.Sender
	gen             textgen.Generator
	metrics         *metrics.Metrics
	logger          *logging.Logger
	loc             *time.Location
	tick            time.Duration
	countdownAt     schedule.TimeOfDay
	countdownWindow int
	nearTermLead    time.Duration
	now             func() time.Time
}

// NewScheduler wires the reminder loop with default rule parameters.
func NewScheduler(store *appointments.Store, sender messaging.Sender, loc *time.Location, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		store:           store,
		sender:          sender,
		logger:          logger,
		loc:             loc,
		tick:            defaultTick,
		countdownAt:     defaultCountdownAt,
		countdownWindow: defaultCountdownWindow,
		nearTermLead:    defaultNearTermLead,
		now:             time.Now,
	}
}

// WithGenerator sets the optional text generator for reminder bodies.
func (s *Scheduler) WithGenerator(gen textgen.Generator) *Scheduler {
	s.gen = gen
	return s
}

// WithMetrics attaches the shared counters.
func (s *Scheduler) WithMetrics(m *metrics.Metrics) *Scheduler {
	s.metrics = m
	return s
}

// WithTick overrides the evaluation period.
func (s *Scheduler) WithTick(d time.Duration) *Scheduler {
	if d > 0 {
		s.tick = d
	}
	return s
}

// WithCountdownAt overrides the local time-of-day the countdown rule
// fires at.
func (s *Scheduler) WithCountdownAt(at schedule.TimeOfDay) *Scheduler {
	s.countdownAt = at
	return s
}

// WithCountdownWindow overrides how many days ahead the countdown rule
// reaches.
func (s *Scheduler) WithCountdownWindow(days int) *Scheduler {
	if days > 0 {
		s.countdownWindow = days
	}
	return s
}

// WithNearTermLead overrides the lead time of the near-term rule.
func (s *Scheduler) WithNearTermLead(d time.Duration) *Scheduler {
	if d > 0 {
		s.nearTermLead = d
	}
	return s
}

// Run evaluates reminders every tick until ctx is cancelled. Intended to
// run on its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	s.logger.Info("reminder: scheduler started", "tick", s.tick.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder: scheduler stopped")
			return
		case <-ticker.C:
			s.ProcessTick(ctx, s.now())
		}
	}
}

// ProcessTick evaluates both rules for every appointment and returns how
// many reminders were sent. A send failure for one contact never stops
// the sweep.
func (s *Scheduler) ProcessTick(ctx context.Context, now time.Time) int {
	now = now.In(s.loc)
	sent := 0
	for _, appt := range s.store.List() {
		if days, due := s.countdownDue(now, appt.Time); due {
			if s.send(ctx, appt, s.countdownBody(ctx, appt, days)) {
				s.metrics.ObserveReminder("countdown")
				s.logger.Info("reminder: countdown sent", "phone", appt.Phone, "days", days)
				sent++
			}
		}
		if s.nearTermDue(now, appt.Time) {
			if s.send(ctx, appt, s.nearTermBody(ctx, appt)) {
				s.metrics.ObserveReminder("near_term")
				s.logger.Info("reminder: near-term sent", "phone", appt.Phone)
				sent++
			}
		}
	}
	return sent
}

// countdownDue reports whether the daily countdown fires for this
// appointment at this instant: local wall clock equals the trigger
// time-of-day and the appointment date is 1..countdownWindow days ahead.
func (s *Scheduler) countdownDue(now, apptTime time.Time) (int, bool) {
	if now.Hour() != s.countdownAt.Hour || now.Minute() != s.countdownAt.Minute {
		return 0, false
	}
	days := daysAhead(now, apptTime.In(s.loc))
	if days < 1 || days > s.countdownWindow {
		return 0, false
	}
	return days, true
}

// nearTermDue reports whether this instant, truncated to the minute, is
// exactly the lead time before the appointment.
func (s *Scheduler) nearTermDue(now, apptTime time.Time) bool {
	trigger := apptTime.In(s.loc).Add(-s.nearTermLead)
	return now.Truncate(time.Minute).Equal(trigger.Truncate(time.Minute))
}

func (s *Scheduler) send(ctx context.Context, appt appointments.Appointment, body string) bool {
	err := s.sender.SendText(ctx, messaging.Outbound{To: appt.Phone, Body: body})
	if err != nil {
		s.logger.Error("reminder: send failed", "phone", appt.Phone, "error", err)
		s.metrics.ObserveOutbound("failed")
		return false
	}
	s.metrics.ObserveOutbound("sent")
	return true
}

// daysAhead counts whole local calendar dates between now and then.
func daysAhead(now, then time.Time) int {
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	thenDate := time.Date(then.Year(), then.Month(), then.Day(), 0, 0, 0, 0, time.UTC)
	return int(thenDate.Sub(nowDate) / (24 * time.Hour))
}
