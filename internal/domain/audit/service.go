// Package audit provides append-only audit logging backed by SQLite.
// All operations are inserts or reads; no update or delete path exists.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matiasleandrokruk/acmedesk/pkg/uuid"
)

// Service persists audit events to the audit_event table.
type Service struct {
	db *sql.DB
}

// NewService creates a new audit service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Log creates a new audit event (append-only, immutable).
// This is the ONLY way to create audit events - no updates, no deletes.
func (s *Service) Log(ctx context.Context, event *AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewV7().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	detail := event.Detail
	if len(detail) == 0 {
		detail = json.RawMessage("{}")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_event (id, workspace_id, actor_type, actor_id, action, resource, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.WorkspaceID,
		string(event.ActorType),
		event.ActorID,
		event.Action,
		event.Resource,
		string(event.Outcome),
		string(detail),
		event.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("audit: insert event: %w", err)
	}
	return nil
}

// LogAction is a helper for the common case: build an event from parts and log it.
func (s *Service) LogAction(
	ctx context.Context,
	actorType ActorType,
	actorID *string,
	action string,
	resource *string,
	outcome Outcome,
	detail any,
) error {
	var detailJSON json.RawMessage
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("audit: marshal detail: %w", err)
		}
		detailJSON = b
	}

	return s.Log(ctx, &AuditEvent{
		ActorType: actorType,
		ActorID:   actorID,
		Action:    action,
		Resource:  resource,
		Outcome:   outcome,
		Detail:    detailJSON,
	})
}

// GetByID retrieves a single audit event by ID.
func (s *Service) GetByID(ctx context.Context, id string) (*AuditEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, actor_type, actor_id, action, resource, outcome, detail, created_at
		FROM audit_event WHERE id = ?
	`, id)
	return scanEvent(row)
}

// ListByAction retrieves audit events filtered by action type,
// ordered by created_at DESC (newest first).
func (s *Service) ListByAction(ctx context.Context, action string, limit, offset int) ([]*AuditEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace_id, actor_type, actor_id, action, resource, outcome, detail, created_at
		FROM audit_event WHERE action = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, action, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit: list by action: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListByOutcome retrieves audit events filtered by outcome.
func (s *Service) ListByOutcome(ctx context.Context, outcome Outcome, limit, offset int) ([]*AuditEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace_id, actor_type, actor_id, action, resource, outcome, detail, created_at
		FROM audit_event WHERE outcome = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, string(outcome), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit: list by outcome: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Count returns the total number of audit events recorded.
func (s *Service) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_event").Scan(&n); err != nil {
		return 0, fmt.Errorf("audit: count: %w", err)
	}
	return n, nil
}

// --- row scanning ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*AuditEvent, error) {
	var (
		evt       AuditEvent
		actorType string
		outcome   string
		detail    string
		createdAt string
	)
	err := row.Scan(
		&evt.ID, &evt.WorkspaceID, &actorType, &evt.ActorID,
		&evt.Action, &evt.Resource, &outcome, &detail, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	evt.ActorType = ActorType(actorType)
	evt.Outcome = Outcome(outcome)
	evt.Detail = json.RawMessage(detail)
	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		evt.CreatedAt = t
	}
	return &evt, nil
}

func scanEvents(rows *sql.Rows) ([]*AuditEvent, error) {
	var events []*AuditEvent
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("audit: scan row: %w", err)
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}
