package appointments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/schedule"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

// ErrNotFound is returned when no appointment exists for a phone.
var ErrNotFound = errors.New("appointments: not found")

// Persister writes the full appointment set to durable storage
// (the spreadsheet file in production).
type Persister interface {
	Persist(ctx context.Context, appts []Appointment) error
}

// SeenRegistry tracks phones that have appeared in any import, so hook
// messaging can distinguish genuinely new contacts from re-imports.
type SeenRegistry interface {
	Seen(phone string) bool
	MarkSeen(phones ...string) error
}

// Store holds the active appointment set in memory, keyed by phone.
// Mutations persist synchronously; a persistence failure is logged and
// reported but in-memory state is not rolled back, so the set may
// diverge from disk until the next successful write.
type Store struct {
	mu        sync.RWMutex
	byPhone   map[string]Appointment
	persister Persister
	logger    *logging.Logger
}

// NewStore creates an appointment store. persister may be nil (tests).
func NewStore(persister Persister, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		byPhone:   make(map[string]Appointment),
		persister: persister,
		logger:    logger,
	}
}

// Get returns the appointment for a phone.
func (s *Store) Get(phone string) (Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byPhone[phone]
	return a, ok
}

// List returns all appointments ordered by time.
func (s *Store) List() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Appointment, 0, len(s.byPhone))
	for _, a := range s.byPhone {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// Bookings exposes the active set to the availability engine.
func (s *Store) Bookings() []schedule.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schedule.Booking, 0, len(s.byPhone))
	for _, a := range s.byPhone {
		out = append(out, schedule.Booking{Phone: a.Phone, Time: a.Time})
	}
	return out
}

// Reschedule moves a phone's appointment to newTime in place and
// persists. Returns the previous time.
func (s *Store) Reschedule(ctx context.Context, phone string, newTime time.Time) (time.Time, error) {
	s.mu.Lock()
	a, ok := s.byPhone[phone]
	if !ok {
		s.mu.Unlock()
		return time.Time{}, ErrNotFound
	}
	old := a.Time
	a.Time = newTime
	s.byPhone[phone] = a
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return old, fmt.Errorf("appointments: reschedule persist: %w", err)
	}
	return old, nil
}

// Cancel removes a phone's appointment and persists.
func (s *Store) Cancel(ctx context.Context, phone string) (Appointment, error) {
	s.mu.Lock()
	a, ok := s.byPhone[phone]
	if !ok {
		s.mu.Unlock()
		return Appointment{}, ErrNotFound
	}
	delete(s.byPhone, phone)
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return a, fmt.Errorf("appointments: cancel persist: %w", err)
	}
	return a, nil
}

// Clear drops every appointment and persists the empty set.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.byPhone = make(map[string]Appointment)
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("appointments: clear persist: %w", err)
	}
	return nil
}

// ImportMerge reconciles a freshly imported batch against the current
// set by phone:
//   - phone in both with differing times: the existing record wins, so a
//     live reschedule is never overwritten by a stale sheet;
//   - phone only in the current set: kept (it may exist purely through
//     the dialogue);
//   - phone only in the batch: added.
//
// seen classifies genuinely new phones for hook messaging and is updated
// with every phone in the batch. The merged set persists immediately.
func (s *Store) ImportMerge(ctx context.Context, batch []Appointment, seen SeenRegistry) (MergeResult, error) {
	var res MergeResult

	s.mu.Lock()
	for _, imp := range batch {
		if imp.Phone == "" {
			continue
		}
		if existing, ok := s.byPhone[imp.Phone]; ok {
			if !existing.Time.Equal(imp.Time) {
				s.logger.Info("appointments: import kept rescheduled record",
					"phone", imp.Phone,
					"stored", existing.Time.Format(time.RFC3339),
					"imported", imp.Time.Format(time.RFC3339),
				)
			}
			res.Kept++
			continue
		}
		s.byPhone[imp.Phone] = imp
		res.Added++
		if seen == nil || !seen.Seen(imp.Phone) {
			res.NewPhones = append(res.NewPhones, imp.Phone)
		}
	}
	res.Total = len(s.byPhone)
	s.mu.Unlock()

	if seen != nil {
		phones := make([]string, 0, len(batch))
		for _, imp := range batch {
			if imp.Phone != "" {
				phones = append(phones, imp.Phone)
			}
		}
		if err := seen.MarkSeen(phones...); err != nil {
			s.logger.Error("appointments: failed to record seen phones", "error", err)
		}
	}

	if err := s.persist(ctx); err != nil {
		return res, fmt.Errorf("appointments: import persist: %w", err)
	}

	s.logger.Info("appointments: import merged",
		"added", res.Added, "kept", res.Kept, "total", res.Total, "new_phones", len(res.NewPhones))
	return res, nil
}

func (s *Store) persist(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Persist(ctx, s.List()); err != nil {
		s.logger.Error("appointments: persist failed, in-memory state retained", "error", err)
		return err
	}
	return nil
}
