package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrBuiltinExecutionFailed = errors.New("builtin tool execution failed")

type GetOrderStatusExecutor struct{ invoker Invoker }

func NewGetOrderStatusExecutor(invoker Invoker) ToolExecutor {
	return &GetOrderStatusExecutor{invoker: invoker}
}

type orderIDParams struct {
	OrderID string `json:"order_id"`
}

func (e *GetOrderStatusExecutor) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	if e.invoker == nil {
		return nil, fmt.Errorf("%w: invoker not configured", ErrBuiltinExecutionFailed)
	}

	var in orderIDParams
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("%w: invalid params", ErrBuiltinExecutionFailed)
	}
	if in.OrderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", ErrBuiltinExecutionFailed)
	}

	query := fmt.Sprintf(
		"SELECT order_id, status, tracking, estimated_delivery, order_date FROM orders WHERE order_id = '%s'",
		escapeSQLString(in.OrderID),
	)
	res := e.invoker.Invoke("read_data", map[string]any{"query": query})
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrBuiltinExecutionFailed, res.Message)
	}

	if len(res.Data) == 0 {
		out, _ := json.Marshal(map[string]any{
			"found":   false,
			"message": fmt.Sprintf("No order found with ID %s", in.OrderID),
		})
		return out, nil
	}

	out, err := json.Marshal(map[string]any{
		"found": true,
		"order": res.Data[0],
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode result: %v", ErrBuiltinExecutionFailed, err)
	}
	return out, nil
}

type SearchKnowledgeBaseExecutor struct{ invoker Invoker }

func NewSearchKnowledgeBaseExecutor(invoker Invoker) ToolExecutor {
	return &SearchKnowledgeBaseExecutor{invoker: invoker}
}

type searchParams struct {
	Query string `json:"query"`
}

func (e *SearchKnowledgeBaseExecutor) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	if e.invoker == nil {
		return nil, fmt.Errorf("%w: invoker not configured", ErrBuiltinExecutionFailed)
	}

	var in searchParams
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("%w: invalid params", ErrBuiltinExecutionFailed)
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrBuiltinExecutionFailed)
	}

	keyword := escapeSQLString(strings.TrimSpace(in.Query))
	query := fmt.Sprintf(
		"SELECT keyword, article FROM knowledge_base WHERE keyword LIKE '%%%s%%' OR article LIKE '%%%s%%'",
		keyword, keyword,
	)
	res := e.invoker.Invoke("read_data", map[string]any{"query": query})
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrBuiltinExecutionFailed, res.Message)
	}

	// First match wins; the knowledge base keeps one article per keyword.
	if len(res.Data) == 0 {
		out, _ := json.Marshal(map[string]any{
			"found":   false,
			"message": fmt.Sprintf("No articles found matching '%s'", in.Query),
		})
		return out, nil
	}

	out, err := json.Marshal(map[string]any{
		"found":   true,
		"article": res.Data[0],
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode result: %v", ErrBuiltinExecutionFailed, err)
	}
	return out, nil
}

type RefundOrderExecutor struct{ invoker Invoker }

func NewRefundOrderExecutor(invoker Invoker) ToolExecutor {
	return &RefundOrderExecutor{invoker: invoker}
}

func (e *RefundOrderExecutor) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	if e.invoker == nil {
		return nil, fmt.Errorf("%w: invoker not configured", ErrBuiltinExecutionFailed)
	}

	var in struct {
		OrderID string `json:"order_id"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("%w: invalid params", ErrBuiltinExecutionFailed)
	}
	if in.OrderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", ErrBuiltinExecutionFailed)
	}

	query := fmt.Sprintf(
		"UPDATE orders SET status = 'refunded' WHERE order_id = '%s'",
		escapeSQLString(in.OrderID),
	)
	res := e.invoker.Invoke("update_data", map[string]any{"query": query})
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrBuiltinExecutionFailed, res.Message)
	}

	affected := 0
	if res.RowsAffected != nil {
		affected = *res.RowsAffected
	}

	out, _ := json.Marshal(map[string]any{
		"order_id":      in.OrderID,
		"reason":        in.Reason,
		"refunded":      affected > 0,
		"rows_affected": affected,
	})
	return out, nil
}

// escapeSQLString doubles single quotes for embedding in a SQL string literal.
// The MCP database server only accepts whole query strings, so values are
// inlined rather than bound.
func escapeSQLString(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
