package sqlmcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// response is the payload serialized into the tool result's text content.
// The bridge on the client side JSON-decodes this a second time, so the
// field names here are the wire contract.
type response struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message,omitempty"`
	Data         []map[string]any `json:"data,omitempty"`
	RowsAffected *int64           `json:"rowsAffected,omitempty"`
}

func textResult(r response) *mcp.CallToolResult {
	b, err := json.Marshal(r)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode response: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

func failure(format string, args ...any) *mcp.CallToolResult {
	return textResult(response{Success: false, Message: fmt.Sprintf(format, args...)})
}

// ReadTool handles the read_data MCP tool.
type ReadTool struct {
	store *Store
}

func NewReadTool(store *Store) *ReadTool { return &ReadTool{store: store} }

func (t *ReadTool) Definition() mcp.Tool {
	return mcp.NewTool("read_data",
		mcp.WithDescription("Run a SELECT query against the support database and return the matching rows"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("A complete SELECT statement"),
		),
	)
}

func (t *ReadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return failure("'query' is required"), nil
	}

	rows, err := t.store.Read(ctx, query)
	if err != nil {
		return failure("read failed: %v", err), nil
	}

	return textResult(response{
		Success: true,
		Message: fmt.Sprintf("%d rows returned", len(rows)),
		Data:    rows,
	}), nil
}

// InsertTool handles the insert_data MCP tool.
type InsertTool struct {
	store *Store
}

func NewInsertTool(store *Store) *InsertTool { return &InsertTool{store: store} }

func (t *InsertTool) Definition() mcp.Tool {
	return mcp.NewTool("insert_data",
		mcp.WithDescription("Run an INSERT statement against the support database"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("A complete INSERT statement"),
		),
	)
}

func (t *InsertTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return failure("'query' is required"), nil
	}

	affected, err := t.store.Insert(ctx, query)
	if err != nil {
		return failure("insert failed: %v", err), nil
	}

	return textResult(response{
		Success:      true,
		Message:      "insert succeeded",
		RowsAffected: &affected,
	}), nil
}

// UpdateTool handles the update_data MCP tool.
type UpdateTool struct {
	store *Store
}

func NewUpdateTool(store *Store) *UpdateTool { return &UpdateTool{store: store} }

func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("update_data",
		mcp.WithDescription("Run an UPDATE or DELETE statement against the support database"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("A complete UPDATE or DELETE statement"),
		),
	)
}

func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return failure("'query' is required"), nil
	}

	affected, err := t.store.Update(ctx, query)
	if err != nil {
		return failure("update failed: %v", err), nil
	}

	return textResult(response{
		Success:      true,
		Message:      "update succeeded",
		RowsAffected: &affected,
	}), nil
}

// CreateTableTool handles the create_table MCP tool.
type CreateTableTool struct {
	store *Store
}

func NewCreateTableTool(store *Store) *CreateTableTool { return &CreateTableTool{store: store} }

func (t *CreateTableTool) Definition() mcp.Tool {
	return mcp.NewTool("create_table",
		mcp.WithDescription("Create a table in the support database"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("A complete CREATE TABLE statement"),
		),
	)
}

func (t *CreateTableTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return failure("'query' is required"), nil
	}

	if err := t.store.CreateTable(ctx, query); err != nil {
		return failure("create table failed: %v", err), nil
	}

	return textResult(response{Success: true, Message: "table created"}), nil
}

// DescribeTableTool handles the describe_table MCP tool.
type DescribeTableTool struct {
	store *Store
}

func NewDescribeTableTool(store *Store) *DescribeTableTool { return &DescribeTableTool{store: store} }

func (t *DescribeTableTool) Definition() mcp.Tool {
	return mcp.NewTool("describe_table",
		mcp.WithDescription("Return the column layout of a table in the support database"),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table name"),
		),
	)
}

func (t *DescribeTableTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table := req.GetString("table", "")
	if table == "" {
		return failure("'table' is required"), nil
	}

	columns, err := t.store.DescribeTable(ctx, table)
	if err != nil {
		return failure("describe failed: %v", err), nil
	}

	return textResult(response{
		Success: true,
		Message: fmt.Sprintf("%d columns", len(columns)),
		Data:    columns,
	}), nil
}
