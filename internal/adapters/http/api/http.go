// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	service "github.com/okian/matchkey/internal/app"
	"github.com/okian/matchkey/internal/domain/mailto"
	"github.com/okian/matchkey/internal/domain/model"
)

// maxBodyBytes bounds request bodies; a match descriptor is a few hundred bytes.
const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	KeyDependencies
	VerifyDependencies
	HistoryDependencies
	TemplateDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	keysHandler     *KeysHandler
	verifyHandler   *VerifyHandler
	historyHandler  *HistoryHandler
	templateHandler *TemplateHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		keysHandler:     NewKeysHandler(deps),
		verifyHandler:   NewVerifyHandler(deps),
		historyHandler:  NewHistoryHandler(deps),
		templateHandler: NewTemplateHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/v1/keys", MetricsMiddleware(s.keysHandler.HandlePostKey, "keys"))
	mux.HandleFunc("/v1/verify", MetricsMiddleware(s.verifyHandler.HandlePostVerify, "verify"))
	mux.HandleFunc("/v1/history", MetricsMiddleware(s.historyHandler.HandleHistory, "history"))
	mux.HandleFunc("/v1/history/stats", MetricsMiddleware(s.historyHandler.HandleStats, "history_stats"))
	mux.HandleFunc("/v1/template/preview", MetricsMiddleware(s.templateHandler.HandlePreview, "template_preview"))
}

// matchRequest mirrors the OpenAPI MatchRequest schema.
type matchRequest struct {
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Key   string `json:"key,omitempty"`
}

func (m matchRequest) match() model.Match {
	return model.Match{Team1: m.Team1, Team2: m.Team2, Date: m.Date, Time: m.Time}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeMatch(w http.ResponseWriter, r *http.Request) (matchRequest, error) {
	var req matchRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: decode body: %w", ErrBadRequest, err)
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, ErrBadRequest) {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", errors.New("internal error"))
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
}

// TemplateDependencies exposes the configured email template.
type TemplateDependencies interface {
	Template() mailto.Template
}

// TemplateHandler handles template preview requests.
type TemplateHandler struct {
	deps TemplateDependencies
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(deps TemplateDependencies) *TemplateHandler {
	return &TemplateHandler{deps: deps}
}

type previewResponse struct {
	Template string `json:"template"`
	Preview  string `json:"preview"`
	HasKey   bool   `json:"has_key"`
}

// HandlePreview handles GET /v1/template/preview requests.
func (h *TemplateHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	t := h.deps.Template()
	writeJSON(w, http.StatusOK, previewResponse{Template: t.Body(), Preview: t.Preview(), HasKey: t.HasKey()})
}
