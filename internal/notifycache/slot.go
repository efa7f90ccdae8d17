package notifycache

import (
	"context"
	"sync"
)

// Slot is the single key-value cell the cache mirrors. Implementations hold
// one JSON document (the full notification list); there is no per-entry
// addressing at this level.
type Slot interface {
	// Load returns the current document. ok is false when the slot is absent,
	// which is not an error.
	Load(ctx context.Context) (data []byte, ok bool, err error)
	// Store replaces the document.
	Store(ctx context.Context, data []byte) error
	// Clear removes the document entirely. Clearing an absent slot succeeds.
	Clear(ctx context.Context) error
}

// MemorySlot is an in-process Slot for single-instance deployments and tests.
type MemorySlot struct {
	mu      sync.Mutex
	data    []byte
	present bool
}

// NewMemorySlot returns an empty in-process slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Load implements Slot.
func (s *MemorySlot) Load(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return nil, false, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, true, nil
}

// Store implements Slot.
func (s *MemorySlot) Store(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.present = true
	return nil
}

// Clear implements Slot.
func (s *MemorySlot) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.present = false
	return nil
}
