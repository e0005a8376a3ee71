package dialog

import (
	"context"
	"sync"
	"time"
)

// Stage identifies where a contact stands in the rescheduling or
// cancellation dialogue. Absence of a state entry is equivalent to
// StageIdle.
type Stage string

const (
	StageIdle                   Stage = "idle"
	StageConfirmingCancellation Stage = "confirming_cancellation"
	StageSelectingDate          Stage = "selecting_date"
	StageSelectingTime          Stage = "selecting_time"
)

// State is the per-contact dialogue record. Offered dates and slots are
// a snapshot at offer time; a concurrent booking by another contact does
// not retroactively invalidate them.
type State struct {
	Phone        string      `json:"phone"`
	Stage        Stage       `json:"stage"`
	OfferedDates []time.Time `json:"offered_dates,omitempty"`
	SelectedDate time.Time   `json:"selected_date,omitempty"`
	OfferedSlots []time.Time `json:"offered_slots,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// StateStore persists in-progress dialogue state keyed by phone.
type StateStore interface {
	Get(ctx context.Context, phone string) (State, bool, error)
	Put(ctx context.Context, state State) error
	Clear(ctx context.Context, phone string) error
}

// MemoryStateStore is a StateStore backed by a mutex-guarded map, with
// optional idle expiry.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]State
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryStateStore creates an in-memory state store. ttl <= 0
// disables idle expiry.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{
		states: make(map[string]State),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *MemoryStateStore) Get(_ context.Context, phone string) (State, bool, error) {
	s.mu.RLock()
	state, ok := s.states[phone]
	s.mu.RUnlock()
	if !ok {
		return State{}, false, nil
	}
	if s.ttl > 0 && s.now().Sub(state.UpdatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.states, phone)
		s.mu.Unlock()
		return State{}, false, nil
	}
	return state, true, nil
}

func (s *MemoryStateStore) Put(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state.UpdatedAt = s.now()
	s.states[state.Phone] = state
	return nil
}

func (s *MemoryStateStore) Clear(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, phone)
	return nil
}
