// Package support implements the customer support agent: an LLM chat loop
// that plans tool calls, runs them through the governance gate, executes the
// allowed ones against the MCP-backed store, and folds results back into the
// conversation until the model produces a final answer.
package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matiasleandrokruk/acmedesk/internal/domain/tool"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/llm"
)

// systemPrompt frames every conversation. Tool schemas travel separately in
// the request's Tools field.
const systemPrompt = "You are the ACME Customer Support Agent for an online store. " +
	"Help customers with order status, shipping, returns and refunds. " +
	"Use the available tools to look up real order and policy data instead of guessing. " +
	"If a customer asks for something you cannot do, say so and suggest contacting a human supervisor. " +
	"Keep answers short and concrete."

// maxToolRounds bounds the plan-execute loop so a looping model cannot spin forever.
const maxToolRounds = 5

var ErrToolRoundLimit = errors.New("support: tool round limit exceeded")

// ToolGate validates a model response before any tool executes.
// Satisfied by *governance.Gate.
type ToolGate interface {
	Check(resp *llm.ChatResponse) error
}

// ToolSource provides executors and their LLM-facing definitions.
// Satisfied by *tool.Registry.
type ToolSource interface {
	Get(name string) (tool.ToolExecutor, error)
	Definitions() []llm.ToolDefinition
}

// AgentService orchestrates one support conversation turn.
type AgentService struct {
	llm   llm.LLMProvider
	gate  ToolGate
	tools ToolSource
}

// NewAgentService wires the agent's collaborators.
func NewAgentService(provider llm.LLMProvider, gate ToolGate, tools ToolSource) *AgentService {
	return &AgentService{llm: provider, gate: gate, tools: tools}
}

// ChatInput is a single user turn plus prior conversation history.
type ChatInput struct {
	Message string
	History []llm.Message
}

// ChatResult is the agent's final answer for a turn.
type ChatResult struct {
	Reply      string   `json:"reply"`
	ToolsUsed  []string `json:"tools_used,omitempty"`
	ToolRounds int      `json:"tool_rounds"`
}

// Chat runs the agent loop for one user message.
// A governance denial aborts the whole turn: no tool from the denied
// response executes, and the *governance.DeniedError surfaces to the caller.
func (s *AgentService) Chat(ctx context.Context, in ChatInput) (*ChatResult, error) {
	if in.Message == "" {
		return nil, fmt.Errorf("support: message is required")
	}

	messages := make([]llm.Message, 0, len(in.History)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	messages = append(messages, in.History...)
	messages = append(messages, llm.Message{Role: "user", Content: in.Message})

	var toolsUsed []string

	for round := 0; round < maxToolRounds; round++ {
		resp, err := s.llm.ChatCompletion(ctx, llm.ChatRequest{
			Messages:    messages,
			Tools:       s.tools.Definitions(),
			Temperature: 0.2,
			MaxTokens:   1024,
		})
		if err != nil {
			return nil, fmt.Errorf("support: chat completion: %w", err)
		}

		if err := s.gate.Check(resp); err != nil {
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			return &ChatResult{
				Reply:      resp.Content,
				ToolsUsed:  toolsUsed,
				ToolRounds: round,
			}, nil
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			toolsUsed = append(toolsUsed, call.Name)
			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    s.runTool(ctx, call),
				ToolCallID: call.ID,
			})
		}
	}

	return nil, ErrToolRoundLimit
}

// runTool executes one tool call and renders its outcome as the tool-role
// message content. Execution failures become error payloads the model can
// read and recover from, not turn-aborting errors.
func (s *AgentService) runTool(ctx context.Context, call llm.ToolCall) string {
	executor, err := s.tools.Get(call.Name)
	if err != nil {
		return errorPayload(fmt.Sprintf("unknown tool %q", call.Name))
	}

	out, err := executor.Execute(ctx, json.RawMessage(call.Arguments))
	if err != nil {
		return errorPayload(err.Error())
	}
	return string(out)
}

func errorPayload(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}
