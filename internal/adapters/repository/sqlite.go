package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/matchkey/internal/domain/model"
	"github.com/okian/matchkey/pkg/metrics"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// SQLiteStore keeps the history in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	settings
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrMissingPath
	}
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, settings: newSettings(opts)}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS history (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL,
    team1 TEXT NOT NULL,
    team2 TEXT NOT NULL,
    match_date TEXT NOT NULL,
    match_time TEXT NOT NULL,
    canonical_date TEXT NOT NULL,
    canonical_time TEXT NOT NULL,
    security_key TEXT NOT NULL,
    salt_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate history schema: %w", err)
	}
	return nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, e model.HistoryEntry) error {
	if e.ID == "" {
		return ErrMissingID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history(id, created_at, team1, team2, match_date, match_time, canonical_date, canonical_time, security_key, salt_id)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UTC().Format(time.RFC3339Nano), e.Team1, e.Team2, e.Date, e.Time,
		e.CanonicalDate, e.CanonicalTime, e.Key, e.SaltID,
	)
	if err != nil {
		metrics.RecordHistoryError("append")
		return fmt.Errorf("insert history entry: %w", err)
	}
	if s.maxEntries > 0 {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM history WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)`, s.maxEntries)
		if err != nil {
			metrics.RecordHistoryError("trim")
			return fmt.Errorf("trim history: %w", err)
		}
	}
	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateHistoryEntries(n)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, team1, team2, match_date, match_time, canonical_date, canonical_time, security_key, salt_id
		 FROM history ORDER BY seq DESC`)
	if err != nil {
		metrics.RecordHistoryError("list")
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.HistoryEntry
	for rows.Next() {
		var (
			e       model.HistoryEntry
			created string
		)
		if err := rows.Scan(&e.ID, &created, &e.Team1, &e.Team2, &e.Date, &e.Time,
			&e.CanonicalDate, &e.CanonicalTime, &e.Key, &e.SaltID); err != nil {
			metrics.RecordHistoryError("list")
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse history timestamp %q: %w", created, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordHistoryError("list")
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		metrics.RecordHistoryError("count")
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		metrics.RecordHistoryError("clear")
		return fmt.Errorf("clear history: %w", err)
	}
	metrics.UpdateHistoryEntries(0)
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
