package storage

import (
	"fmt"
	"sort"
	"sync"
)

// SeenStore persists the set of phones that have ever appeared in an
// import. Used to suppress duplicate hook messaging on re-imports.
type SeenStore struct {
	mu   sync.RWMutex
	path string
	set  map[string]struct{}
}

// NewSeenStore opens (or initializes) the seen-phones file at path.
func NewSeenStore(path string) (*SeenStore, error) {
	s := &SeenStore{path: path, set: make(map[string]struct{})}
	var phones []string
	if _, err := readJSON(path, &phones); err != nil {
		return nil, fmt.Errorf("storage: load seen phones: %w", err)
	}
	for _, p := range phones {
		s.set[p] = struct{}{}
	}
	return s, nil
}

// Seen reports whether a phone has appeared in any prior import.
func (s *SeenStore) Seen(phone string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[phone]
	return ok
}

// MarkSeen adds phones to the set and persists it.
func (s *SeenStore) MarkSeen(phones ...string) error {
	s.mu.Lock()
	changed := false
	for _, p := range phones {
		if p == "" {
			continue
		}
		if _, ok := s.set[p]; !ok {
			s.set[p] = struct{}{}
			changed = true
		}
	}
	s.mu.Unlock()

	if !changed {
		return nil
	}
	return s.save()
}

func (s *SeenStore) save() error {
	s.mu.RLock()
	phones := make([]string, 0, len(s.set))
	for p := range s.set {
		phones = append(phones, p)
	}
	s.mu.RUnlock()
	sort.Strings(phones)
	if err := writeJSON(s.path, phones); err != nil {
		return fmt.Errorf("storage: save seen phones: %w", err)
	}
	return nil
}
