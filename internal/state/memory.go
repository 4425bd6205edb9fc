package state

import (
	"context"
	"sync"
)

// MemoryStore keeps the form record in process memory only.
type MemoryStore struct {
	mu   sync.Mutex
	form Form
}

// NewMemoryStore returns a MemoryStore holding DefaultForm.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{form: DefaultForm()}
}

// Load returns the current record.
func (s *MemoryStore) Load(_ context.Context) (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form, nil
}

// Save replaces the current record.
func (s *MemoryStore) Save(_ context.Context, form Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
	return nil
}
