// HTTP handlers exposing the governance gate's policy and denial log.
package handlers

import (
	"net/http"

	"github.com/matiasleandrokruk/acmedesk/internal/domain/governance"
)

// AttemptSource exposes the gate's in-memory denial log.
// governance.Gate satisfies it.
type AttemptSource interface {
	BlockedAttempts() []governance.BlockedAttempt
}

// GovernanceHandler serves read-only governance introspection endpoints.
type GovernanceHandler struct {
	attempts AttemptSource
	policy   governance.Policy
}

// NewGovernanceHandler creates a GovernanceHandler over the given gate and
// the policy it was built from.
func NewGovernanceHandler(attempts AttemptSource, policy governance.Policy) *GovernanceHandler {
	return &GovernanceHandler{attempts: attempts, policy: policy}
}

type attemptsResponse struct {
	Attempts []governance.BlockedAttempt `json:"attempts"`
	Count    int                         `json:"count"`
}

type policyResponse struct {
	Denylist  map[string]string `json:"denylist"`
	Allowlist []string          `json:"allowlist"`
}

// ListBlockedAttempts handles GET /api/v1/governance/attempts.
// Returns every denied turn since process start, oldest first.
func (h *GovernanceHandler) ListBlockedAttempts(w http.ResponseWriter, r *http.Request) {
	attempts := h.attempts.BlockedAttempts()
	if attempts == nil {
		attempts = []governance.BlockedAttempt{}
	}
	writeJSON(w, http.StatusOK, attemptsResponse{Attempts: attempts, Count: len(attempts)})
}

// GetPolicy handles GET /api/v1/governance/policy.
func (h *GovernanceHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, policyResponse{
		Denylist:  h.policy.Denylist,
		Allowlist: h.policy.Allowlist,
	})
}
