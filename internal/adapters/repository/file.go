package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/okian/matchkey/internal/domain/model"
	"github.com/okian/matchkey/pkg/metrics"
)

// The history file is a versioned JSON envelope:
//
//	{"version": 1, "entries": [ ... oldest first ... ]}
const fileVersion = 1

type envelope struct {
	Version int                  `json:"version"`
	Entries []model.HistoryEntry `json:"entries"`
}

// FileStore keeps the history in a single JSON file. Every mutation rewrites
// the file through a uniquely named temp file and a rename, so readers never
// see a torn write and concurrent writers never share a temp file.
//
// Writers are serialized within a process only. Two processes appending at
// the same moment can each rewrite the file from the same snapshot, and one
// entry is lost; deployments with concurrent writers use the sqlite backend.
type FileStore struct {
	mu     sync.Mutex
	path   string
	closed bool
	settings
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a FileStore writing to path. The file is created on
// the first Append; an existing file is validated up front.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrMissingPath
	}
	s := &FileStore{path: path, settings: newSettings(opts)}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the history file location.
func (s *FileStore) Path() string { return s.path }

// Append implements Store.
func (s *FileStore) Append(_ context.Context, e model.HistoryEntry) error {
	if e.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	entries, err := s.load()
	if err != nil {
		metrics.RecordHistoryError("append")
		return err
	}
	entries = trim(append(entries, e), s.maxEntries)
	if err := s.flush(entries); err != nil {
		metrics.RecordHistoryError("append")
		return err
	}
	metrics.UpdateHistoryEntries(len(entries))
	return nil
}

// List implements Store.
func (s *FileStore) List(_ context.Context) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	entries, err := s.load()
	if err != nil {
		metrics.RecordHistoryError("list")
		return nil, err
	}
	return newestFirst(entries), nil
}

// Count implements Store.
func (s *FileStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	entries, err := s.load()
	if err != nil {
		metrics.RecordHistoryError("count")
		return 0, err
	}
	return len(entries), nil
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.flush(nil); err != nil {
		metrics.RecordHistoryError("clear")
		return err
	}
	metrics.UpdateHistoryEntries(0)
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// load reads the history file. A missing file is an empty history.
func (s *FileStore) load() ([]model.HistoryEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse history file: %w", err)
	}
	if env.Version > fileVersion {
		return nil, fmt.Errorf("history file version %d is newer than supported version %d", env.Version, fileVersion)
	}
	return env.Entries, nil
}

// flush atomically writes entries to disk.
func (s *FileStore) flush(entries []model.HistoryEntry) error {
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	data, err := json.MarshalIndent(envelope{Version: fileVersion, Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename history file: %w", err)
	}
	return nil
}
