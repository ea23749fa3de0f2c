package tool

import (
	"context"
	"encoding/json"

	"github.com/matiasleandrokruk/acmedesk/internal/mcpbridge"
)

// ToolExecutor defines the runtime contract for executable tools.
type ToolExecutor interface {
	Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error)
}

// Invoker is the subset of the MCP bridge used by executors.
// Satisfied by *mcpbridge.Client; tests substitute a fake.
type Invoker interface {
	Invoke(operation string, arguments map[string]any) mcpbridge.Result
}
