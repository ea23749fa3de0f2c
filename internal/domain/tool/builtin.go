package tool

import (
	"github.com/matiasleandrokruk/acmedesk/internal/infra/llm"
)

const (
	BuiltinGetOrderStatus      = "get_order_status"
	BuiltinSearchKnowledgeBase = "search_knowledge_base"
	BuiltinRefundOrder         = "refund_order"
)

func builtinDefinitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        BuiltinGetOrderStatus,
			Description: "Look up an order by its ID and return status, tracking number and delivery estimate",
			Parameters: map[string]any{
				"type":     "object",
				"required": []string{"order_id"},
				"properties": map[string]any{
					"order_id": map[string]any{
						"type":        "string",
						"description": "Order identifier, e.g. ORD-00042",
					},
				},
				"additionalProperties": false,
			},
		},
		{
			Name:        BuiltinSearchKnowledgeBase,
			Description: "Search support knowledge base articles by topic or content keyword",
			Parameters: map[string]any{
				"type":     "object",
				"required": []string{"query"},
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Keyword to match against article topics and bodies",
					},
				},
				"additionalProperties": false,
			},
		},
		{
			Name:        BuiltinRefundOrder,
			Description: "Mark an order as refunded",
			Parameters: map[string]any{
				"type":     "object",
				"required": []string{"order_id", "reason"},
				"properties": map[string]any{
					"order_id": map[string]any{
						"type":        "string",
						"description": "Order identifier to refund",
					},
					"reason": map[string]any{
						"type":        "string",
						"description": "Why the refund is being issued",
					},
				},
				"additionalProperties": false,
			},
		},
	}
}

// RegisterBuiltins wires the built-in support executors into registry.
// All of them execute against the MCP database server through invoker.
func RegisterBuiltins(registry *Registry, invoker Invoker) error {
	executors := map[string]ToolExecutor{
		BuiltinGetOrderStatus:      NewGetOrderStatusExecutor(invoker),
		BuiltinSearchKnowledgeBase: NewSearchKnowledgeBaseExecutor(invoker),
		BuiltinRefundOrder:         NewRefundOrderExecutor(invoker),
	}

	for _, def := range builtinDefinitions() {
		if err := registry.Register(def, executors[def.Name]); err != nil && err != ErrToolExecutorAlreadyRegistered {
			return err
		}
	}
	return nil
}
