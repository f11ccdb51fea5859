package api

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"time"

	service "github.com/okian/matchkey/internal/app"
	"github.com/okian/matchkey/internal/domain/keying"
	"github.com/okian/matchkey/internal/domain/model"
)

// KeyDependencies defines the interface for key generation.
type KeyDependencies interface {
	Generate(ctx context.Context, m model.Match) (service.Generation, error)
}

// KeysHandler handles key generation requests.
type KeysHandler struct {
	deps KeyDependencies
}

// NewKeysHandler creates a new keys handler.
func NewKeysHandler(deps KeyDependencies) *KeysHandler {
	return &KeysHandler{deps: deps}
}

// keyResponse never carries the key itself; it travels inside the mailto.
type keyResponse struct {
	ID        string    `json:"id"`
	KeyHint   string    `json:"key_hint"`
	Mailto    string    `json:"mailto"`
	Filename  string    `json:"filename"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	SaltID    string    `json:"salt_id"`
	CreatedAt time.Time `json:"created_at"`
}

// HandlePostKey handles POST /v1/keys requests. With ?format=png the QR image
// is returned instead of JSON.
func (h *KeysHandler) HandlePostKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	req, err := decodeMatch(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	gen, err := h.deps.Generate(r.Context(), req.match())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "png" {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(gen.PNG)))
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": gen.Filename}))
		w.Header().Set("X-Entry-Id", gen.Entry.ID)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(gen.PNG)
		return
	}

	writeJSON(w, http.StatusCreated, keyResponse{
		ID:        gen.Entry.ID,
		KeyHint:   keying.Mask(gen.Key),
		Mailto:    gen.Mailto,
		Filename:  gen.Filename,
		Date:      gen.Entry.CanonicalDate,
		Time:      gen.Entry.CanonicalTime,
		SaltID:    gen.Entry.SaltID,
		CreatedAt: gen.Entry.CreatedAt,
	})
}
