package llm

import (
	"context"
	"testing"
)

// stubProvider is a minimal LLMProvider for router tests.
type stubProvider struct {
	id string
}

func (s *stubProvider) ChatCompletion(_ context.Context, _ ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Content: s.id}, nil
}
func (s *stubProvider) ModelInfo() ModelMeta            { return ModelMeta{ID: s.id} }
func (s *stubProvider) HealthCheck(context.Context) error { return nil }

func TestRouter_Route_ReturnsDefaultProvider(t *testing.T) {
	t.Parallel()

	r := NewRouter(map[string]LLMProvider{
		"openai": &stubProvider{id: "gpt"},
		"ollama": &stubProvider{id: "llama"},
	}, "openai")

	p, err := r.Route(context.Background())
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if p.ModelInfo().ID != "gpt" {
		t.Errorf("expected default provider, got %q", p.ModelInfo().ID)
	}
}

func TestRouter_Route_UnknownDefault_ReturnsError(t *testing.T) {
	t.Parallel()

	r := NewRouter(map[string]LLMProvider{}, "anthropic")

	if _, err := r.Route(context.Background()); err == nil {
		t.Error("expected error for unregistered default provider")
	}
}

func TestRouter_Register_AddsProvider(t *testing.T) {
	t.Parallel()

	r := NewRouter(map[string]LLMProvider{}, "ollama")
	r.Register("ollama", &stubProvider{id: "llama"})

	p, err := r.Route(context.Background())
	if err != nil {
		t.Fatalf("Route failed after Register: %v", err)
	}
	if p.ModelInfo().ID != "llama" {
		t.Errorf("unexpected provider: %q", p.ModelInfo().ID)
	}
}

func TestNewLiteLLMProvider_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewLiteLLMProvider(LiteLLMConfig{Provider: "openai"}); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := NewLiteLLMProvider(LiteLLMConfig{Provider: "bedrock", APIKey: "k"}); err == nil {
		t.Error("expected error for unknown provider key")
	}
	if _, err := NewLiteLLMProvider(LiteLLMConfig{Provider: "anthropic", APIKey: "k", Model: "claude-sonnet-4"}); err != nil {
		t.Errorf("unexpected error for valid config: %v", err)
	}
}
