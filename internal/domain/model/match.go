// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingField reports a blank required descriptor field.
var ErrMissingField = errors.New("missing required field")

// Match identifies a single fixture as typed by a user. Fields are free text;
// two Match values may describe the same fixture with different spelling.
type Match struct {
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// Validate performs the input-layer check: both team names must be present.
// Date and time may be blank; the keying treats them as ordinary text.
func (m Match) Validate() error {
	switch {
	case strings.TrimSpace(m.Team1) == "":
		return fmt.Errorf("team1: %w", ErrMissingField)
	case strings.TrimSpace(m.Team2) == "":
		return fmt.Errorf("team2: %w", ErrMissingField)
	}
	return nil
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (m Match) Trimmed() Match {
	return Match{
		Team1: strings.TrimSpace(m.Team1),
		Team2: strings.TrimSpace(m.Team2),
		Date:  strings.TrimSpace(m.Date),
		Time:  strings.TrimSpace(m.Time),
	}
}

// HistoryEntry records one key generation.
type HistoryEntry struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Team1         string    `json:"team1"`
	Team2         string    `json:"team2"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CanonicalDate string    `json:"canonical_date"`
	CanonicalTime string    `json:"canonical_time"`
	Key           string    `json:"key"`
	SaltID        string    `json:"salt_id"`
}

// Match returns the descriptor the entry was generated from.
func (e HistoryEntry) Match() Match {
	return Match{Team1: e.Team1, Team2: e.Team2, Date: e.Date, Time: e.Time}
}
