// HTTP handler exposing the persisted audit trail.
package handlers

import (
	"context"
	"net/http"

	domainaudit "github.com/matiasleandrokruk/acmedesk/internal/domain/audit"
)

// AuditReader is the read side of the audit service used by the handler.
type AuditReader interface {
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*domainaudit.AuditEvent, error)
	ListByOutcome(ctx context.Context, outcome domainaudit.Outcome, limit, offset int) ([]*domainaudit.AuditEvent, error)
}

// AuditHandler serves the audit trail listing endpoint.
type AuditHandler struct {
	audit AuditReader
}

// NewAuditHandler creates an AuditHandler over the audit service.
func NewAuditHandler(audit AuditReader) *AuditHandler {
	return &AuditHandler{audit: audit}
}

type auditListResponse struct {
	Events []*domainaudit.AuditEvent `json:"events"`
	Count  int                       `json:"count"`
}

// ListEvents handles GET /api/v1/audit/events. Filter with ?action=... or
// ?outcome=...; exactly one filter is required. Supports limit/offset
// pagination, newest first.
func (h *AuditHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	outcome := r.URL.Query().Get("outcome")

	if (action == "") == (outcome == "") {
		writeError(w, http.StatusBadRequest, "exactly one of action or outcome query parameter is required")
		return
	}

	page := parsePaginationParams(r)

	var events []*domainaudit.AuditEvent
	var err error
	if action != "" {
		events, err = h.audit.ListByAction(r.Context(), action, page.Limit, page.Offset)
	} else {
		events, err = h.audit.ListByOutcome(r.Context(), domainaudit.Outcome(outcome), page.Limit, page.Offset)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit events")
		return
	}

	if events == nil {
		events = []*domainaudit.AuditEvent{}
	}
	writeJSON(w, http.StatusOK, auditListResponse{Events: events, Count: len(events)})
}
