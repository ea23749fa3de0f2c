// HTTP audit middleware for protected routes.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/matiasleandrokruk/acmedesk/internal/api/ctxkeys"
	domainaudit "github.com/matiasleandrokruk/acmedesk/internal/domain/audit"
)

// AuditLogger is the minimal contract used by AuditMiddleware.
// domainaudit.Service satisfies this interface.
type AuditLogger interface {
	LogAction(
		ctx context.Context,
		actorType domainaudit.ActorType,
		actorID *string,
		action string,
		resource *string,
		outcome domainaudit.Outcome,
		detail any,
	) error
}

// AuditMiddleware logs protected HTTP requests into audit_event.
// Expected order in router: AuthMiddleware -> AuditMiddleware -> handlers.
func AuditMiddleware(logger AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := r.Context().Value(ctxkeys.UserID).(string)
			if !ok || userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			action := actionFromRequest(r.Method, r.URL.Path)
			path := r.URL.Path
			_ = logger.LogAction(
				r.Context(),
				domainaudit.ActorTypeUser,
				&userID,
				action,
				&path,
				outcomeFromStatus(recorder.statusCode),
				map[string]any{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status_code": recorder.statusCode,
					"duration_ms": time.Since(start).Milliseconds(),
				},
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func outcomeFromStatus(statusCode int) domainaudit.Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return domainaudit.OutcomeSuccess
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return domainaudit.OutcomeDenied
	default:
		return domainaudit.OutcomeFailure
	}
}

// actionFromRequest derives an audit action like "support.chat" or
// "governance.attempts" from the request path.
func actionFromRequest(method, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 3 || segments[0] != "api" || segments[1] != "v1" {
		return strings.ToLower(method) + "_request"
	}

	action := segments[2]
	if len(segments) > 3 {
		action += "." + segments[3]
	} else {
		action += "." + strings.ToLower(method)
	}
	return action
}
