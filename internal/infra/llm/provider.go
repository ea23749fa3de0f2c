// Package llm — LLMProvider interface.
// Adapters (LiteLLM, Ollama) implement this interface so the application is
// never coupled to a specific LLM vendor.
package llm

import "context"

// LLMProvider is the model-agnostic interface for LLM operations.
// Streaming is deliberately excluded: the agent loop is synchronous and
// consumes complete responses only.
type LLMProvider interface {
	// ChatCompletion performs a non-streaming chat completion. Tool
	// definitions in the request are bound for function calling; requested
	// calls come back in ChatResponse.ToolCalls.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider is reachable and operational.
	HealthCheck(ctx context.Context) error
}
