// Route registration and go-chi router setup. Public routes (/health,
// /auth/*) take no token; everything under /api/v1 requires a Bearer JWT.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/matiasleandrokruk/acmedesk/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/acmedesk/internal/api/middleware"
	domainaudit "github.com/matiasleandrokruk/acmedesk/internal/domain/audit"
	domainauth "github.com/matiasleandrokruk/acmedesk/internal/domain/auth"
	"github.com/matiasleandrokruk/acmedesk/internal/domain/governance"
)

// Dependencies bundles the services the router serves. Chat and Gate are
// built in the composition root because they depend on the LLM provider and
// the MCP bridge; the router builds the rest from the DB.
type Dependencies struct {
	DB     *sql.DB
	Chat   handlers.ChatService
	Gate   *governance.Gate
	Policy governance.Policy
}

// NewRouter creates and configures a chi router with all routes.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()
	auditService := domainaudit.NewService(deps.DB)

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	authHandler := handlers.NewAuthHandler(domainauth.NewServiceWithAudit(deps.DB, auditService))
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /auth/register
		r.Post("/login", authHandler.Login)       // POST /auth/login
	})

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)
		r.Use(apmiddleware.AuditMiddleware(auditService))

		chatHandler := handlers.NewChatHandler(deps.Chat)
		r.Route("/support", func(r chi.Router) {
			r.Post("/chat", chatHandler.Chat) // POST /api/v1/support/chat
		})

		governanceHandler := handlers.NewGovernanceHandler(deps.Gate, deps.Policy)
		r.Route("/governance", func(r chi.Router) {
			r.Get("/attempts", governanceHandler.ListBlockedAttempts) // GET /api/v1/governance/attempts
			r.Get("/policy", governanceHandler.GetPolicy)             // GET /api/v1/governance/policy
		})

		auditHandler := handlers.NewAuditHandler(auditService)
		r.Route("/audit", func(r chi.Router) {
			r.Get("/events", auditHandler.ListEvents) // GET /api/v1/audit/events
		})
	})

	return r
}
