// Package repository persists the key generation history.
package repository

import (
	"context"

	"github.com/okian/matchkey/internal/domain/model"
)

// Store provides read/write access to the generation history.
type Store interface {
	// Append records a new entry.
	Append(ctx context.Context, e model.HistoryEntry) error

	// List returns every entry, newest first.
	List(ctx context.Context) ([]model.HistoryEntry, error)

	// Count returns the number of recorded entries.
	Count(ctx context.Context) (int, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the Store for backend. path is ignored by the memory backend.
func Open(ctx context.Context, backend, path string, opts ...Option) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(opts...), nil
	case BackendFile:
		return NewFileStore(path, opts...)
	case BackendSQLite:
		return NewSQLiteStore(ctx, path, opts...)
	default:
		return nil, ErrUnknownBackend
	}
}
