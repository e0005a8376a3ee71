package storage

import (
	"fmt"
	"sync"
)

// StatusRecord captures whether a contact has opted in to promotional
// messages. Persisted independently of appointments.
type StatusRecord struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Status string `json:"status"` // "yes" or "no"
}

// StatusStore keeps opt-in records in memory, backed by a whole-file
// JSON document.
type StatusStore struct {
	mu      sync.RWMutex
	path    string
	records []StatusRecord
}

// NewStatusStore opens (or initializes) the status file at path.
func NewStatusStore(path string) (*StatusStore, error) {
	s := &StatusStore{path: path}
	if _, err := readJSON(path, &s.records); err != nil {
		return nil, fmt.Errorf("storage: load status: %w", err)
	}
	return s, nil
}

// List returns a copy of all status records.
func (s *StatusStore) List() []StatusRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StatusRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Uninterested returns the records whose status is "no": the audience
// for promotional hook messages.
func (s *StatusStore) Uninterested() []StatusRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []StatusRecord
	for _, r := range s.records {
		if r.Status == "no" {
			out = append(out, r)
		}
	}
	return out
}

// Replace swaps in a new record set and persists it.
func (s *StatusStore) Replace(records []StatusRecord) error {
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return s.save()
}

// Clear drops every record and persists the empty list.
func (s *StatusStore) Clear() error {
	return s.Replace(nil)
}

func (s *StatusStore) save() error {
	s.mu.RLock()
	records := s.records
	if records == nil {
		records = []StatusRecord{}
	}
	s.mu.RUnlock()
	if err := writeJSON(s.path, records); err != nil {
		return fmt.Errorf("storage: save status: %w", err)
	}
	return nil
}
