// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchkey/internal/adapters/qrcode"
	"github.com/okian/matchkey/internal/adapters/repository"
	"github.com/okian/matchkey/internal/domain/canonical"
	"github.com/okian/matchkey/internal/domain/keying"
	"github.com/okian/matchkey/internal/domain/mailto"
	"github.com/okian/matchkey/internal/domain/model"
	"github.com/okian/matchkey/pkg/logger"
	"github.com/okian/matchkey/pkg/metrics"
)

// Service generates and verifies match keys and keeps the generation history.
// It holds no mutable state of its own and is safe for concurrent use.
type Service struct {
	deriver   *keying.Deriver
	store     repository.Store
	template  mailto.Template
	recipient string
	subject   string
	encoder   *qrcode.Encoder
	logger    logger.Logger
	now       func() time.Time
}

// Generation is the result of Generate. Key is only meant to travel inside
// Mailto and PNG; callers should not display it.
type Generation struct {
	Entry    model.HistoryEntry
	Key      keying.Key
	Body     string
	Mailto   string
	PNG      []byte
	Filename string
}

// Verification is the result of Verify.
type Verification struct {
	Outcome        keying.Outcome
	MaskedExpected string
	CanonicalDate  string
	CanonicalTime  string
}

// Valid reports whether the candidate matched.
func (v Verification) Valid() bool { return v.Outcome == keying.OutcomeValid }

// Stats summarizes the history.
type Stats struct {
	Total int
	Today int
	Last  *time.Time
}

// New constructs a Service. WithDeriver is required.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		template: mailto.NewTemplate(""),
		subject:  mailto.DefaultSubject,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.deriver == nil {
		return nil, ErrNoDeriver
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.encoder == nil {
		s.encoder = qrcode.New()
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	return s, nil
}

// SaltID returns the fingerprint of the salt in use.
func (s *Service) SaltID() string { return s.deriver.SaltID() }

// Encoder returns the QR encoder in use.
func (s *Service) Encoder() *qrcode.Encoder { return s.encoder }

// Template returns the email template in use.
func (s *Service) Template() mailto.Template { return s.template }

// Generate derives the key for m, renders the payment request and its QR
// code, and records the generation. A failure to record is logged but does
// not fail the generation.
func (s *Service) Generate(ctx context.Context, m model.Match) (Generation, error) {
	if err := m.Validate(); err != nil {
		return Generation{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	m = m.Trimmed()

	key := s.deriver.DeriveMatch(m)
	body := s.template.Render(mailto.FieldsFor(m, key.String()))
	link := mailto.Link(s.recipient, s.subject, body)

	png, err := s.encoder.PNG(link)
	if errors.Is(err, qrcode.ErrPayloadTooLarge) {
		return Generation{}, fmt.Errorf("%w: match details too long for a qr code: %w", ErrInvalidInput, err)
	}
	if err != nil {
		return Generation{}, fmt.Errorf("render qr: %w", err)
	}

	entry := model.HistoryEntry{
		ID:            uuid.NewString(),
		CreatedAt:     s.now().UTC(),
		Team1:         m.Team1,
		Team2:         m.Team2,
		Date:          m.Date,
		Time:          m.Time,
		CanonicalDate: canonical.Date(m.Date),
		CanonicalTime: canonical.Time(m.Time),
		Key:           key.String(),
		SaltID:        s.deriver.SaltID(),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		s.logger.Warn(ctx, "failed to record generation",
			logger.String("id", entry.ID),
			logger.Error(err),
		)
	}

	metrics.RecordKeyGenerated()
	s.logger.Info(ctx, "key generated",
		logger.String("id", entry.ID),
		logger.String("date", entry.CanonicalDate),
		logger.String("time", entry.CanonicalTime),
		logger.String("salt_id", entry.SaltID),
	)

	return Generation{
		Entry:    entry,
		Key:      key,
		Body:     body,
		Mailto:   link,
		PNG:      png,
		Filename: mailto.SuggestedFilename(m),
	}, nil
}

// Verify checks candidate against the key re-derived from m. Only missing
// teams are an error; a blank or garbled candidate is OutcomeMalformed.
func (s *Service) Verify(ctx context.Context, m model.Match, candidate string) (Verification, error) {
	if err := m.Validate(); err != nil {
		return Verification{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	outcome := s.deriver.Verify(m, candidate)
	v := Verification{
		Outcome:        outcome,
		MaskedExpected: keying.Mask(s.deriver.DeriveMatch(m)),
		CanonicalDate:  canonical.Date(m.Date),
		CanonicalTime:  canonical.Time(m.Time),
	}

	metrics.RecordVerification(outcome.String())
	s.logger.Info(ctx, "key verified",
		logger.String("outcome", outcome.String()),
		logger.String("date", v.CanonicalDate),
		logger.String("time", v.CanonicalTime),
	)
	return v, nil
}

// History returns past generations, newest first.
func (s *Service) History(ctx context.Context) ([]model.HistoryEntry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// ClearHistory removes every recorded generation.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.logger.Info(ctx, "history cleared")
	return nil
}

// Stats counts all generations and those made today, in the clock's
// location.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list history: %w", err)
	}

	now := s.now()
	today := now.Format(time.DateOnly)
	st := Stats{Total: len(entries)}
	for i := range entries {
		created := entries[i].CreatedAt.In(now.Location())
		if created.Format(time.DateOnly) == today {
			st.Today++
		}
		if st.Last == nil || created.After(*st.Last) {
			st.Last = &created
		}
	}
	metrics.UpdateHistoryEntries(st.Total)
	return st, nil
}

// Close releases the history store.
func (s *Service) Close() error {
	return s.store.Close()
}
