// Package llm — LiteLLM adapter.
// LiteLLMProvider speaks to OpenAI-compatible and Anthropic APIs through the
// voocel/litellm client, selected by the configured provider key. This is the
// production adapter; Ollama stays available for local development.
package llm

import (
	"context"
	"fmt"

	"github.com/voocel/litellm"
)

// LiteLLMConfig holds the vendor selection and credentials for the adapter.
type LiteLLMConfig struct {
	Provider string // "openai" | "anthropic"
	APIKey   string
	BaseURL  string // optional endpoint override
	Model    string
}

// LiteLLMProvider implements LLMProvider on top of the litellm client.
type LiteLLMProvider struct {
	client *litellm.Client
	config LiteLLMConfig
}

// NewLiteLLMProvider creates an adapter for the configured vendor.
// Returns an error for an unknown provider key or a missing API key, so
// misconfiguration fails at startup rather than on the first request.
func NewLiteLLMProvider(config LiteLLMConfig) (*LiteLLMProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("llm: %s API key is required", config.Provider)
	}

	var client *litellm.Client
	switch config.Provider {
	case "openai":
		if config.BaseURL != "" {
			client = litellm.New(litellm.WithOpenAI(config.APIKey, config.BaseURL))
		} else {
			client = litellm.New(litellm.WithOpenAI(config.APIKey))
		}
	case "anthropic":
		if config.BaseURL != "" {
			client = litellm.New(litellm.WithAnthropic(config.APIKey, config.BaseURL))
		} else {
			client = litellm.New(litellm.WithAnthropic(config.APIKey))
		}
	default:
		return nil, fmt.Errorf("llm: unknown provider %q (valid: openai, anthropic)", config.Provider)
	}

	return &LiteLLMProvider{client: client, config: config}, nil
}

// ChatCompletion performs a non-streaming chat completion with tool binding.
func (p *LiteLLMProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	litellmReq := &litellm.Request{
		Model:    model,
		Messages: toLiteLLMMessages(req.Messages),
		Tools:    toLiteLLMTools(req.Tools),
	}
	if req.Temperature != 0 {
		litellmReq.Temperature = litellm.Float64Ptr(float64(req.Temperature))
	}
	if req.MaxTokens != 0 {
		litellmReq.MaxTokens = litellm.IntPtr(req.MaxTokens)
	}

	resp, err := p.client.Chat(ctx, litellmReq)
	if err != nil {
		return nil, fmt.Errorf("litellm chat completion: %w", err)
	}

	out := &ChatResponse{
		Content:    resp.Content,
		ToolCalls:  fromLiteLLMToolCalls(resp.ToolCalls),
		StopReason: "stop",
		Tokens:     resp.Usage.PromptTokens + resp.Usage.CompletionTokens,
	}
	if len(out.ToolCalls) > 0 {
		out.StopReason = "tool_calls"
	}
	return out, nil
}

// ModelInfo returns static metadata about the configured vendor/model.
func (p *LiteLLMProvider) ModelInfo() ModelMeta {
	return ModelMeta{ID: p.config.Model, Provider: p.config.Provider}
}

// HealthCheck verifies the adapter is usable. The hosted APIs expose no
// dedicated ping endpoint, so this validates configuration only.
func (p *LiteLLMProvider) HealthCheck(_ context.Context) error {
	if p.client == nil {
		return fmt.Errorf("llm: litellm client not initialized")
	}
	return nil
}

// ─── conversion helpers ─────────────────────────────────────────────────────

func toLiteLLMMessages(messages []Message) []litellm.Message {
	result := make([]litellm.Message, len(messages))
	for i, msg := range messages {
		result[i] = litellm.Message{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			ToolCalls:  toLiteLLMToolCalls(msg.ToolCalls),
		}
	}
	return result
}

func toLiteLLMToolCalls(calls []ToolCall) []litellm.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]litellm.ToolCall, len(calls))
	for i, tc := range calls {
		result[i] = litellm.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: litellm.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		}
	}
	return result
}

func toLiteLLMTools(tools []ToolDefinition) []litellm.Tool {
	if len(tools) == 0 {
		return nil
	}
	result := make([]litellm.Tool, len(tools))
	for i, tool := range tools {
		result[i] = litellm.Tool{
			Type: "function",
			Function: litellm.FunctionDef{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		}
	}
	return result
}

func fromLiteLLMToolCalls(calls []litellm.ToolCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]ToolCall, len(calls))
	for i, tc := range calls {
		result[i] = ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}
	return result
}
