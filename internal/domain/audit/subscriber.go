// Event-bus subscriber that persists governance decisions as audit events.
package audit

import (
	"context"
	"log"
	"strings"

	"github.com/matiasleandrokruk/acmedesk/internal/domain/governance"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/eventbus"
)

// SubscribeGovernance consumes governance decision events from bus and
// records each one as an audit event. It blocks until ctx is canceled,
// so callers run it in a goroutine:
//
//	go auditSvc.SubscribeGovernance(ctx, bus)
func (s *Service) SubscribeGovernance(ctx context.Context, bus eventbus.EventBus) {
	ch := bus.Subscribe(governance.EventTopic)
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-ch:
			decision, ok := evt.Payload.(governance.Decision)
			if !ok {
				log.Printf("audit: unexpected payload type %T on %s", evt.Payload, evt.Topic)
				continue
			}
			s.recordDecision(ctx, decision)
		}
	}
}

// recordDecision maps a governance decision onto an audit row.
// Persistence failures are logged, not propagated: the audit trail must
// never take down the consumption loop.
func (s *Service) recordDecision(ctx context.Context, d governance.Decision) {
	action := ActionToolAllowed
	outcome := OutcomeAllowed
	if !d.Allowed {
		action = ActionToolDenied
		outcome = OutcomeDenied
	}

	resource := strings.Join(d.Tools, ",")
	err := s.LogAction(ctx, ActorTypeAgent, nil, action, &resource, outcome, map[string]any{
		"tools":  d.Tools,
		"reason": d.Reason,
	})
	if err != nil {
		log.Printf("audit: record governance decision: %v", err)
	}
}
