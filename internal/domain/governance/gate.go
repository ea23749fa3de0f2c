package governance

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/matiasleandrokruk/acmedesk/internal/infra/llm"
)

// EventTopic is the eventbus topic governance decisions are published on.
const EventTopic = "governance.decision"

// DeniedError is the hard rejection returned when a model response requests
// a denylisted tool. It blocks the entire turn: none of the requested tools
// may execute, including ones not on the denylist.
type DeniedError struct {
	Tool   string // the denylisted operation that triggered the block
	Reason string // the configured rejection reason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: tool %q is not authorized. %s", e.Tool, e.Reason)
}

// StatusCode returns the HTTP-equivalent classification for the denial.
func (e *DeniedError) StatusCode() int { return http.StatusForbidden }

// AsDenied unwraps a *DeniedError from err, if present.
func AsDenied(err error) (*DeniedError, bool) {
	var denied *DeniedError
	if errors.As(err, &denied) {
		return denied, true
	}
	return nil, false
}

// BlockedAttempt records one denied model turn in the in-memory audit log.
type BlockedAttempt struct {
	Tools  []string  `json:"tools"`  // every tool the blocked response requested
	Reason string    `json:"reason"` // the denylist reason that triggered the block
	At     time.Time `json:"at"`
}

// Publisher is the minimal eventbus contract used by the gate.
type Publisher interface {
	Publish(topic string, payload any)
}

// Decision is the payload published on EventTopic for every checked response
// that named at least one tool.
type Decision struct {
	Allowed bool
	Tools   []string
	Reason  string
}

// Gate enforces the static tool policy on completed model responses.
// The policy tables are fixed at construction; only the blocked-attempts log
// mutates, guarded by a mutex so concurrent checks keep append order atomic.
// The log is never consulted for the allow/deny decision.
type Gate struct {
	denylist  map[string]string
	allowlist map[string]struct{}

	mu       sync.Mutex
	attempts []BlockedAttempt

	bus Publisher // optional observability sink
}

// NewGate creates a Gate from a policy. The bus may be nil; when set, every
// decision on a tool-bearing response is published for downstream audit.
func NewGate(policy Policy, bus Publisher) *Gate {
	allow := make(map[string]struct{}, len(policy.Allowlist))
	for _, name := range policy.Allowlist {
		allow[name] = struct{}{}
	}
	deny := make(map[string]string, len(policy.Denylist))
	for name, reason := range policy.Denylist {
		deny[name] = reason
	}
	return &Gate{denylist: deny, allowlist: allow, bus: bus}
}

// ExtractToolCalls returns the tool names a model response requested, in the
// order they appear. A response with no tool calls yields an empty slice.
func ExtractToolCalls(resp *llm.ChatResponse) []string {
	if resp == nil || len(resp.ToolCalls) == 0 {
		return nil
	}
	names := make([]string, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		names = append(names, tc.Name)
	}
	return names
}

// Check inspects a completed model response before any tool executes.
// The first denylisted tool, in request order, fails the whole turn with a
// *DeniedError and appends one entry to the blocked-attempts log. Responses
// whose tools all pass (or that request no tools) return nil.
//
// Check is a pure function of the response's tool names and the static
// policy tables: identical inputs always produce identical decisions.
func (g *Gate) Check(resp *llm.ChatResponse) error {
	names := ExtractToolCalls(resp)
	if len(names) == 0 {
		return nil
	}

	for _, name := range names {
		reason, blocked := g.denylist[name]
		if !blocked {
			continue
		}

		g.mu.Lock()
		g.attempts = append(g.attempts, BlockedAttempt{
			Tools:  names,
			Reason: reason,
			At:     time.Now().UTC(),
		})
		g.mu.Unlock()

		g.publish(Decision{Allowed: false, Tools: names, Reason: reason})
		return &DeniedError{Tool: name, Reason: reason}
	}

	// Observability only: one allowed entry per tool seen, never block here.
	for _, name := range names {
		g.publish(Decision{Allowed: true, Tools: []string{name}})
	}
	return nil
}

// Allowed reports whether a tool name is on the allowlist. The allowlist is
// informational; it plays no part in Check.
func (g *Gate) Allowed(name string) bool {
	_, ok := g.allowlist[name]
	return ok
}

// BlockedAttempts returns a copy of the append-only denial log.
func (g *Gate) BlockedAttempts() []BlockedAttempt {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]BlockedAttempt, len(g.attempts))
	copy(out, g.attempts)
	return out
}

func (g *Gate) publish(d Decision) {
	if g.bus != nil {
		g.bus.Publish(EventTopic, d)
	}
}
