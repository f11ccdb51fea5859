package repository

import (
	"context"
	"sync"

	"github.com/okian/matchkey/internal/domain/model"
	"github.com/okian/matchkey/pkg/metrics"
)

// MemoryStore keeps the history in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.HistoryEntry // oldest first
	closed  bool
	settings
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{settings: newSettings(opts)}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, e model.HistoryEntry) error {
	if e.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.entries = trim(append(s.entries, e), s.maxEntries)
	metrics.UpdateHistoryEntries(len(s.entries))
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return newestFirst(s.entries), nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.entries), nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.entries = nil
	metrics.UpdateHistoryEntries(0)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// trim drops the oldest entries beyond max.
func trim(entries []model.HistoryEntry, max int) []model.HistoryEntry {
	if max <= 0 || len(entries) <= max {
		return entries
	}
	return append([]model.HistoryEntry(nil), entries[len(entries)-max:]...)
}

// newestFirst returns a reversed copy of an oldest-first slice.
func newestFirst(entries []model.HistoryEntry) []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
