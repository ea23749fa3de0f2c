// Package llm defines the model-agnostic LLM provider abstraction.
// All types here are shared between the provider interface and adapters.
package llm

// Message represents a single turn in a conversation.
type Message struct {
	Role    string // "system" | "user" | "assistant" | "tool"
	Content string

	// ToolCalls carries the calls requested by an assistant turn.
	ToolCalls []ToolCall

	// ToolCallID links a tool-role message back to the assistant's request.
	ToolCallID string
}

// ToolCall is a model-requested invocation of a named tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded arguments object, as emitted by the model
}

// ToolDefinition describes a callable tool bound into a chat request.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema for the arguments object
}

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Tools       []ToolDefinition
	Temperature float32
	MaxTokens   int
}

// ChatResponse is the output from a non-streaming chat completion.
type ChatResponse struct {
	Content    string     // The assistant message text.
	ToolCalls  []ToolCall // Tool invocations requested by the model, in order.
	StopReason string     // "stop" | "tool_calls" | "length" | "error"
	Tokens     int        // Total tokens consumed (prompt + completion).
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID        string // e.g. "gpt-4o-mini", "claude-sonnet-4"
	Provider  string // e.g. "openai", "anthropic", "ollama"
	Version   string
	MaxTokens int // Maximum context window size.
}
