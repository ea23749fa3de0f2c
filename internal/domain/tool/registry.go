// Package tool holds the executable tool registry for the support agent.
// Executors run against the MCP database server through the bridge; the
// registry also exposes the JSON-schema definitions bound into LLM requests.
package tool

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/matiasleandrokruk/acmedesk/internal/infra/llm"
)

var (
	ErrToolExecutorAlreadyRegistered = errors.New("tool executor already registered")
	ErrToolExecutorNotRegistered     = errors.New("tool executor not registered")
)

// Registry maps tool names to executors and their LLM-facing definitions.
type Registry struct {
	mu          sync.RWMutex
	executors   map[string]ToolExecutor
	definitions map[string]llm.ToolDefinition
}

// NewRegistry returns an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		executors:   make(map[string]ToolExecutor),
		definitions: make(map[string]llm.ToolDefinition),
	}
}

// Register adds an executor with its definition. Names must be unique.
func (r *Registry) Register(def llm.ToolDefinition, executor ToolExecutor) error {
	name := strings.TrimSpace(def.Name)
	if name == "" || executor == nil {
		return ErrToolExecutorNotRegistered
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[name]; exists {
		return ErrToolExecutorAlreadyRegistered
	}
	r.executors[name] = executor
	r.definitions[name] = def
	return nil
}

// Get returns the executor registered under name.
func (r *Registry) Get(name string) (ToolExecutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	executor, ok := r.executors[name]
	if !ok {
		return nil, ErrToolExecutorNotRegistered
	}
	return executor, nil
}

// Definitions returns all registered tool definitions, sorted by name for
// stable LLM request payloads.
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]llm.ToolDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	defs := r.Definitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}
