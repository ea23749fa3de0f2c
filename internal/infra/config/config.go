// Package config provides application-wide configuration loaded from env vars.
// All fields have safe defaults so the binary runs locally without any env setup,
// except provider API keys which are validated at provider construction time.
package config

import (
	"os"
	"strings"
)

// Config holds runtime configuration for AcmeDesk.
type Config struct {
	// HTTP
	ListenAddr string // LISTEN_ADDR — default: ":8080"

	// LLM
	LLMProvider     string // LLM_PROVIDER — default: "ollama"
	OpenAIAPIKey    string // OPENAI_API_KEY — no default
	OpenAIModel     string // OPENAI_MODEL — default: "gpt-4o-mini"
	OpenAIEndpoint  string // OPENAI_ENDPOINT — optional custom base URL
	AnthropicAPIKey string // ANTHROPIC_API_KEY — no default
	AnthropicModel  string // ANTHROPIC_MODEL — default: "claude-sonnet-4-20250514"
	OllamaBaseURL   string // OLLAMA_BASE_URL — default: "http://localhost:11434"
	OllamaChatModel string // OLLAMA_CHAT_MODEL — default: "llama3.2:3b"

	// MCP tool server
	MCPServerCommand string   // MCP_SERVER_COMMAND — default: "sqlmcp"
	MCPServerArgs    []string // MCP_SERVER_ARGS — whitespace-separated, default: none

	// Application database (workspaces, users, audit trail)
	AppDBPath string // APP_DB_PATH — default: "acmedesk.db"

	// Support database served over MCP
	SupportDBPath string // SUPPORT_DB_PATH — default: "support.db"
	ReadOnly      bool   // READONLY — default: false ("true"/"1" enable)

	// Governance
	PolicyPath string // GOVERNANCE_POLICY_PATH — optional YAML override of the default policy
}

const (
	envKeyListenAddr       = "LISTEN_ADDR"
	envKeyLLMProvider      = "LLM_PROVIDER"
	envKeyOpenAIAPIKey     = "OPENAI_API_KEY"
	envKeyOpenAIModel      = "OPENAI_MODEL"
	envKeyOpenAIEndpoint   = "OPENAI_ENDPOINT"
	envKeyAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	envKeyAnthropicModel   = "ANTHROPIC_MODEL"
	envKeyOllamaBaseURL    = "OLLAMA_BASE_URL"
	envKeyOllamaChatModel  = "OLLAMA_CHAT_MODEL"
	envKeyMCPServerCommand = "MCP_SERVER_COMMAND"
	envKeyMCPServerArgs    = "MCP_SERVER_ARGS"
	envKeyAppDBPath        = "APP_DB_PATH"
	envKeySupportDBPath    = "SUPPORT_DB_PATH"
	envKeyReadOnly         = "READONLY"
	envKeyPolicyPath       = "GOVERNANCE_POLICY_PATH"
)

// Load reads configuration from environment variables, applying defaults for missing values.
func Load() Config {
	return Config{
		ListenAddr:       envOr(envKeyListenAddr, ":8080"),
		LLMProvider:      envOr(envKeyLLMProvider, "ollama"),
		OpenAIAPIKey:     os.Getenv(envKeyOpenAIAPIKey),
		OpenAIModel:      envOr(envKeyOpenAIModel, "gpt-4o-mini"),
		OpenAIEndpoint:   os.Getenv(envKeyOpenAIEndpoint),
		AnthropicAPIKey:  os.Getenv(envKeyAnthropicAPIKey),
		AnthropicModel:   envOr(envKeyAnthropicModel, "claude-sonnet-4-20250514"),
		OllamaBaseURL:    envOr(envKeyOllamaBaseURL, "http://localhost:11434"),
		OllamaChatModel:  envOr(envKeyOllamaChatModel, "llama3.2:3b"),
		MCPServerCommand: envOr(envKeyMCPServerCommand, "sqlmcp"),
		MCPServerArgs:    strings.Fields(os.Getenv(envKeyMCPServerArgs)),
		AppDBPath:        envOr(envKeyAppDBPath, "acmedesk.db"),
		SupportDBPath:    envOr(envKeySupportDBPath, "support.db"),
		ReadOnly:         envBool(envKeyReadOnly),
		PolicyPath:       os.Getenv(envKeyPolicyPath),
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envBool reads a boolean flag; "true" and "1" enable it, anything else is false.
func envBool(key string) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	}
	return false
}
