// Shared context helpers for API middleware.
package api

import (
	"context"

	"github.com/matiasleandrokruk/acmedesk/internal/api/ctxkeys"
)

// WithWorkspaceID adds workspace_id to the request context.
func WithWorkspaceID(ctx context.Context, wsID string) context.Context {
	return context.WithValue(ctx, ctxkeys.WorkspaceID, wsID)
}

// GetWorkspaceID retrieves workspace_id from context.
func GetWorkspaceID(ctx context.Context) (string, error) {
	wsID, ok := ctx.Value(ctxkeys.WorkspaceID).(string)
	if !ok || wsID == "" {
		return "", ErrMissingWorkspaceID
	}
	return wsID, nil
}
