package audit_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/matiasleandrokruk/acmedesk/internal/domain/audit"
	"github.com/matiasleandrokruk/acmedesk/internal/domain/governance"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/eventbus"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/llm"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/sqlite"
)

// newTestService opens an in-memory migrated DB and returns an audit service on it.
func newTestService(t *testing.T) *audit.Service {
	t.Helper()

	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp error = %v", err)
	}

	return audit.NewService(db)
}

func TestLog_AssignsIDAndTimestamp(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	evt := &audit.AuditEvent{
		ActorType: audit.ActorTypeAgent,
		Action:    audit.ActionToolDenied,
		Outcome:   audit.OutcomeDenied,
	}
	if err := svc.Log(ctx, evt); err != nil {
		t.Fatalf("Log() error = %v; want nil", err)
	}

	if evt.ID == "" {
		t.Error("Log() left ID empty; want generated UUID")
	}
	if evt.CreatedAt.IsZero() {
		t.Error("Log() left CreatedAt zero; want timestamp")
	}

	got, err := svc.GetByID(ctx, evt.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Action != audit.ActionToolDenied {
		t.Errorf("Action = %q; want %q", got.Action, audit.ActionToolDenied)
	}
	if got.Outcome != audit.OutcomeDenied {
		t.Errorf("Outcome = %q; want %q", got.Outcome, audit.OutcomeDenied)
	}
}

func TestLogAction_PersistsDetailJSON(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	resource := "refund_order"
	err := svc.LogAction(ctx, audit.ActorTypeAgent, nil, audit.ActionToolDenied, &resource,
		audit.OutcomeDenied, map[string]any{"reason": "needs approval"})
	if err != nil {
		t.Fatalf("LogAction() error = %v", err)
	}

	events, err := svc.ListByAction(ctx, audit.ActionToolDenied, 10, 0)
	if err != nil {
		t.Fatalf("ListByAction() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events; want 1", len(events))
	}

	var detail map[string]any
	if err := json.Unmarshal(events[0].Detail, &detail); err != nil {
		t.Fatalf("detail is not valid JSON: %v", err)
	}
	if detail["reason"] != "needs approval" {
		t.Errorf("detail.reason = %v; want 'needs approval'", detail["reason"])
	}
	if events[0].Resource == nil || *events[0].Resource != "refund_order" {
		t.Errorf("Resource = %v; want 'refund_order'", events[0].Resource)
	}
}

func TestListByAction_NewestFirst(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		evt := &audit.AuditEvent{
			ActorType: audit.ActorTypeSystem,
			Action:    "test.ordered",
			Outcome:   audit.OutcomeSuccess,
			CreatedAt: time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
		}
		if err := svc.Log(ctx, evt); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	events, err := svc.ListByAction(ctx, "test.ordered", 10, 0)
	if err != nil {
		t.Fatalf("ListByAction() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events; want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].CreatedAt.After(events[i-1].CreatedAt) {
			t.Errorf("events not ordered newest-first at index %d", i)
		}
	}
}

func TestListByOutcome_FiltersCorrectly(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	for _, outcome := range []audit.Outcome{audit.OutcomeAllowed, audit.OutcomeDenied, audit.OutcomeDenied} {
		evt := &audit.AuditEvent{ActorType: audit.ActorTypeAgent, Action: "x", Outcome: outcome}
		if err := svc.Log(ctx, evt); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	denied, err := svc.ListByOutcome(ctx, audit.OutcomeDenied, 10, 0)
	if err != nil {
		t.Fatalf("ListByOutcome() error = %v", err)
	}
	if len(denied) != 2 {
		t.Errorf("got %d denied events; want 2", len(denied))
	}
}

func TestGetByID_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), "missing-id")
	if err != sql.ErrNoRows {
		t.Errorf("GetByID(missing) error = %v; want sql.ErrNoRows", err)
	}
}

func TestSubscribeGovernance_PersistsDecisions(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	bus := eventbus.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.SubscribeGovernance(ctx, bus)

	// Give the subscriber a moment to register before publishing.
	time.Sleep(20 * time.Millisecond)

	bus.Publish(governance.EventTopic, governance.Decision{
		Allowed: false,
		Tools:   []string{"refund_order"},
		Reason:  "Refund operations require human approval. Please escalate to a supervisor.",
	})
	bus.Publish(governance.EventTopic, governance.Decision{
		Allowed: true,
		Tools:   []string{"get_order_status"},
	})

	// Poll until both rows land (subscriber runs asynchronously).
	deadline := time.Now().Add(2 * time.Second)
	for {
		n, err := svc.Count(ctx)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for audit rows; have %d, want 2", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	denied, err := svc.ListByAction(ctx, audit.ActionToolDenied, 10, 0)
	if err != nil {
		t.Fatalf("ListByAction(denied) error = %v", err)
	}
	if len(denied) != 1 {
		t.Fatalf("got %d denied rows; want 1", len(denied))
	}
	if denied[0].Resource == nil || *denied[0].Resource != "refund_order" {
		t.Errorf("denied resource = %v; want 'refund_order'", denied[0].Resource)
	}
}

func TestSubscribeGovernance_OneAllowedRowPerTool(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	bus := eventbus.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.SubscribeGovernance(ctx, bus)
	time.Sleep(20 * time.Millisecond)

	gate := governance.NewGate(governance.DefaultPolicy(), bus)
	resp := &llm.ChatResponse{
		StopReason: "tool_calls",
		ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "get_order_status", Arguments: "{}"},
			{ID: "call_2", Name: "search_knowledge_base", Arguments: "{}"},
		},
	}
	if err := gate.Check(resp); err != nil {
		t.Fatalf("Check() error = %v; want pass", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	var allowed []*audit.AuditEvent
	for {
		var err error
		allowed, err = svc.ListByAction(ctx, audit.ActionToolAllowed, 10, 0)
		if err != nil {
			t.Fatalf("ListByAction(allowed) error = %v", err)
		}
		if len(allowed) >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for allowed rows; have %d, want 2", len(allowed))
		}
		time.Sleep(10 * time.Millisecond)
	}

	if len(allowed) != 2 {
		t.Fatalf("got %d allowed rows; want one per tool", len(allowed))
	}
	seen := map[string]bool{}
	for _, row := range allowed {
		if row.Resource != nil {
			seen[*row.Resource] = true
		}
	}
	if !seen["get_order_status"] || !seen["search_knowledge_base"] {
		t.Errorf("allowed rows cover %v; want both tools individually", seen)
	}
}
