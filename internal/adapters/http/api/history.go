package api

import (
	"context"
	"net/http"
	"time"

	service "github.com/okian/matchkey/internal/app"
	"github.com/okian/matchkey/internal/domain/model"
)

// HistoryDependencies defines the interface for history operations.
type HistoryDependencies interface {
	History(ctx context.Context) ([]model.HistoryEntry, error)
	ClearHistory(ctx context.Context) error
	Stats(ctx context.Context) (service.Stats, error)
}

// HistoryHandler handles history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// historyEntry is the public shape of a record; the key is left out.
type historyEntry struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Team1         string    `json:"team1"`
	Team2         string    `json:"team2"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CanonicalDate string    `json:"canonical_date"`
	CanonicalTime string    `json:"canonical_time"`
	SaltID        string    `json:"salt_id"`
}

type historyResponse struct {
	Entries []historyEntry `json:"entries"`
	Count   int            `json:"count"`
}

type statsResponse struct {
	Total int        `json:"total"`
	Today int        `json:"today"`
	Last  *time.Time `json:"last,omitempty"`
}

// HandleHistory handles GET and DELETE /v1/history requests.
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := h.deps.History(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]historyEntry, len(entries))
		for i, e := range entries {
			out[i] = historyEntry{
				ID:            e.ID,
				CreatedAt:     e.CreatedAt,
				Team1:         e.Team1,
				Team2:         e.Team2,
				Date:          e.Date,
				Time:          e.Time,
				CanonicalDate: e.CanonicalDate,
				CanonicalTime: e.CanonicalTime,
				SaltID:        e.SaltID,
			}
		}
		writeJSON(w, http.StatusOK, historyResponse{Entries: out, Count: len(out)})
	case http.MethodDelete:
		if err := h.deps.ClearHistory(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

// HandleStats handles GET /v1/history/stats requests.
func (h *HistoryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	st, err := h.deps.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Total: st.Total, Today: st.Today, Last: st.Last})
}
