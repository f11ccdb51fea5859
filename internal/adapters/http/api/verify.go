package api

import (
	"context"
	"net/http"

	service "github.com/okian/matchkey/internal/app"
	"github.com/okian/matchkey/internal/domain/model"
)

// VerifyDependencies defines the interface for key verification.
type VerifyDependencies interface {
	Verify(ctx context.Context, m model.Match, candidate string) (service.Verification, error)
}

// VerifyHandler handles verification requests.
type VerifyHandler struct {
	deps VerifyDependencies
}

// NewVerifyHandler creates a new verify handler.
func NewVerifyHandler(deps VerifyDependencies) *VerifyHandler {
	return &VerifyHandler{deps: deps}
}

type verifyResponse struct {
	Outcome      string `json:"outcome"`
	Valid        bool   `json:"valid"`
	ExpectedHint string `json:"expected_hint,omitempty"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

// HandlePostVerify handles POST /v1/verify requests. A wrong or malformed
// key is a normal 200 answer; only unusable input is a 400.
func (h *VerifyHandler) HandlePostVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	req, err := decodeMatch(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	v, err := h.deps.Verify(r.Context(), req.match(), req.Key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := verifyResponse{
		Outcome: v.Outcome.String(),
		Valid:   v.Valid(),
		Date:    v.CanonicalDate,
		Time:    v.CanonicalTime,
	}
	if !v.Valid() {
		resp.ExpectedHint = v.MaskedExpected
	}
	writeJSON(w, http.StatusOK, resp)
}
