package audit

import (
	"encoding/json"
	"time"
)

// ActorType represents the type of actor performing an action
type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeAgent  ActorType = "agent"
	ActorTypeSystem ActorType = "system"
)

// Outcome represents the result of an audited action
type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Well-known action names recorded by the service.
const (
	ActionToolAllowed = "tool.allowed"
	ActionToolDenied  = "tool.denied"
	ActionAuthLogin   = "auth.login"
	ActionAuthSignup  = "auth.signup"
)

// AuditEvent represents a single audit log entry.
// This is immutable - once created, it should never be modified
type AuditEvent struct {
	ID          string          `json:"id"`
	WorkspaceID *string         `json:"workspace_id,omitempty"`
	ActorType   ActorType       `json:"actor_type"`
	ActorID     *string         `json:"actor_id,omitempty"`
	Action      string          `json:"action"`
	Resource    *string         `json:"resource,omitempty"`
	Outcome     Outcome         `json:"outcome"`
	Detail      json.RawMessage `json:"detail,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
