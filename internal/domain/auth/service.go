// Package auth implements Register and Login: workspace creation, user
// creation, password hashing, and JWT issuance.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domainaudit "github.com/matiasleandrokruk/acmedesk/internal/domain/audit"
	pkgauth "github.com/matiasleandrokruk/acmedesk/pkg/auth"
	"github.com/matiasleandrokruk/acmedesk/pkg/uuid"
)

// ErrInvalidCredentials is returned by Login when email or password is
// incorrect. A single error for both cases avoids leaking whether an email
// exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailAlreadyExists is returned by Register when the email is already taken.
var ErrEmailAlreadyExists = errors.New("email already registered")

// RegisterInput holds the data needed to create a new workspace and user.
type RegisterInput struct {
	Email         string
	Password      string
	DisplayName   string
	WorkspaceName string
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Result is returned after successful Register or Login. Token is a signed
// JWT containing UserID and WorkspaceID claims.
type Result struct {
	Token       string
	UserID      string
	WorkspaceID string
}

// Service defines the authentication business operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Result, error)
	Login(ctx context.Context, input LoginInput) (*Result, error)
}

type auditLogger interface {
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

// service is the concrete implementation backed by SQLite.
type service struct {
	db       *sql.DB
	auditLog auditLogger
}

// NewService creates a Service backed by the provided DB.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// NewServiceWithAudit creates a Service that records auth attempts in the
// audit trail.
func NewServiceWithAudit(db *sql.DB, logger auditLogger) Service {
	return &service{db: db, auditLog: logger}
}

// Register creates a new workspace and user atomically, then returns a JWT.
// The password is hashed with bcrypt before storage; plaintext is never stored.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	if input.Email == "" || input.Password == "" {
		return nil, errors.New("email and password are required")
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	workspaceID := uuid.NewV7().String()
	userID := uuid.NewV7().String()

	if err := s.insertWorkspaceAndUser(ctx, insertParams{
		workspaceID:   workspaceID,
		userID:        userID,
		workspaceName: input.WorkspaceName,
		email:         input.Email,
		passwordHash:  hash,
		displayName:   input.DisplayName,
	}); err != nil {
		return nil, err
	}

	token, err := pkgauth.GenerateJWT(userID, workspaceID)
	if err != nil {
		s.logAuth(ctx, userID, domainaudit.ActionAuthSignup, domainaudit.OutcomeFailure, "jwt_generation_failed")
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	s.logAuth(ctx, userID, domainaudit.ActionAuthSignup, domainaudit.OutcomeSuccess, "")

	return &Result{Token: token, UserID: userID, WorkspaceID: workspaceID}, nil
}

// insertParams bundles the data needed for atomic workspace + user creation.
type insertParams struct {
	workspaceID   string
	userID        string
	workspaceName string
	email         string
	passwordHash  string
	displayName   string
}

func (s *service) insertWorkspaceAndUser(ctx context.Context, p insertParams) error {
	now := time.Now().UTC().Format(time.RFC3339)
	slug := generateSlug(p.workspaceName, p.workspaceID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workspace (id, name, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.workspaceID, p.workspaceName, slug, now, now)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_account (id, workspace_id, email, password_hash, display_name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'active', ?, ?)
	`, p.userID, p.workspaceID, p.email, p.passwordHash, p.displayName, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return tx.Commit()
}

// Login verifies credentials and returns a JWT. Any failure — email not
// found or wrong password — yields ErrInvalidCredentials so callers cannot
// probe for registered emails.
func (s *service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	var userID, workspaceID string
	var passwordHash sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, password_hash
		FROM user_account
		WHERE email = ? AND status = 'active'
		LIMIT 1
	`, input.Email).Scan(&userID, &workspaceID, &passwordHash)

	if err != nil {
		s.logAuth(ctx, "", domainaudit.ActionAuthLogin, domainaudit.OutcomeFailure, "user_not_found")
		return nil, ErrInvalidCredentials
	}

	if !passwordHash.Valid || passwordHash.String == "" {
		s.logAuth(ctx, userID, domainaudit.ActionAuthLogin, domainaudit.OutcomeFailure, "missing_password_hash")
		return nil, ErrInvalidCredentials
	}

	if !pkgauth.VerifyPassword(passwordHash.String, input.Password) {
		s.logAuth(ctx, userID, domainaudit.ActionAuthLogin, domainaudit.OutcomeFailure, "invalid_password")
		return nil, ErrInvalidCredentials
	}

	token, err := pkgauth.GenerateJWT(userID, workspaceID)
	if err != nil {
		s.logAuth(ctx, userID, domainaudit.ActionAuthLogin, domainaudit.OutcomeFailure, "jwt_generation_failed")
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	s.logAuth(ctx, userID, domainaudit.ActionAuthLogin, domainaudit.OutcomeSuccess, "")

	return &Result{Token: token, UserID: userID, WorkspaceID: workspaceID}, nil
}

// slugChar maps a single rune to its slug representation: lowercase for
// letters, digits as-is, '-' for spaces and dashes, -1 to drop.
func slugChar(c rune) rune {
	switch {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return c
	case c >= 'A' && c <= 'Z':
		return c + 32 // to lower
	case c == ' ', c == '-':
		return '-'
	default:
		return -1
	}
}

// generateSlug creates a URL-safe workspace slug. The full workspace ID is
// the suffix — UUID v7 timestamps collide within a millisecond, so a short
// prefix is not unique enough.
func generateSlug(name, id string) string {
	slug := strings.Map(slugChar, name)
	return slug + "-" + id
}

// isUniqueViolation checks if an SQLite error is a UNIQUE constraint
// violation. SQLite surfaces this in the error message text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *service) logAuth(ctx context.Context, userID, action string, outcome domainaudit.Outcome, reason string) {
	if s.auditLog == nil {
		return
	}
	var actorID *string
	if userID != "" {
		actorID = &userID
	}
	var detail any
	if reason != "" {
		detail = map[string]string{"reason": reason}
	}
	_ = s.auditLog.LogAction(ctx, domainaudit.ActorTypeUser, actorID, action, nil, outcome, detail)
}
