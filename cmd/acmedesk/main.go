// AcmeDesk - customer support agent service.
//
// The HTTP API serves a tool-using support agent over a governed LLM loop.
// Database access for the agent goes through the sqlmcp MCP server; the
// application's own state (workspaces, users, audit trail) lives in a local
// SQLite database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/matiasleandrokruk/acmedesk/internal/api"
	domainaudit "github.com/matiasleandrokruk/acmedesk/internal/domain/audit"
	"github.com/matiasleandrokruk/acmedesk/internal/domain/governance"
	"github.com/matiasleandrokruk/acmedesk/internal/domain/support"
	"github.com/matiasleandrokruk/acmedesk/internal/domain/tool"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/config"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/eventbus"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/llm"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/sqlite"
	"github.com/matiasleandrokruk/acmedesk/internal/mcpbridge"
	"github.com/matiasleandrokruk/acmedesk/internal/seed"
	"github.com/matiasleandrokruk/acmedesk/internal/server"
	"github.com/matiasleandrokruk/acmedesk/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "serve":
		if err := serve(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	case "migrate":
		if err := migrate(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	case "seed":
		if err := seedSupportDB(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	case "version", "--version", "-v":
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	case "help", "--help", "-h":
		printHelp(out)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp(out)
		return 2
	}
}

// serve wires the full service: app DB, governance gate, audit subscriber,
// MCP bridge, LLM provider, agent, and the HTTP server.
func serve(out io.Writer) error {
	cfg := config.Load()

	db, err := sqlite.NewDB(cfg.AppDBPath)
	if err != nil {
		return fmt.Errorf("opening app database: %w", err)
	}
	if err := sqlite.MigrateUp(db); err != nil {
		db.Close() //nolint:errcheck
		return fmt.Errorf("running migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy, err := loadPolicy(cfg)
	if err != nil {
		return err
	}

	bus := eventbus.New()
	gate := governance.NewGate(policy, bus)

	auditSvc := domainaudit.NewService(db)
	go auditSvc.SubscribeGovernance(ctx, bus)

	bridge := mcpbridge.New(cfg.MCPServerCommand, cfg.MCPServerArgs)
	registry := tool.NewRegistry()
	if err := tool.RegisterBuiltins(registry, bridge); err != nil {
		return fmt.Errorf("registering builtin tools: %w", err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	agent := support.NewAgentService(provider, gate, registry)

	srvCfg, err := serverConfig(cfg.ListenAddr)
	if err != nil {
		return err
	}
	srv := server.NewServer(api.Dependencies{
		DB:     db,
		Chat:   agent,
		Gate:   gate,
		Policy: policy,
	}, srvCfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// migrate applies pending app-database migrations and reports the version.
func migrate(out io.Writer) error {
	cfg := config.Load()

	db, err := sqlite.NewDB(cfg.AppDBPath)
	if err != nil {
		return fmt.Errorf("opening app database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if err := sqlite.MigrateUp(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	v, err := sqlite.MigrationVersion(db)
	if err != nil {
		return fmt.Errorf("reading migration version: %w", err)
	}
	fmt.Fprintf(out, "migrations applied; schema version %d\n", v)
	return nil
}

// seedSupportDB populates the support database through the MCP server so
// seeding exercises the same tool path the agent uses.
func seedSupportDB(out io.Writer) error {
	cfg := config.Load()

	bridge := mcpbridge.New(cfg.MCPServerCommand, cfg.MCPServerArgs)
	seeder := seed.NewSeeder(bridge, out)

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	return seeder.Run(seed.DefaultOrderCount, rng)
}

// loadPolicy reads the YAML policy override when configured, otherwise the
// built-in default.
func loadPolicy(cfg config.Config) (governance.Policy, error) {
	if cfg.PolicyPath == "" {
		return governance.DefaultPolicy(), nil
	}
	policy, err := governance.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return governance.Policy{}, fmt.Errorf("loading governance policy: %w", err)
	}
	return policy, nil
}

// buildProvider constructs the configured LLM provider behind the router.
func buildProvider(cfg config.Config) (llm.LLMProvider, error) {
	providers := map[string]llm.LLMProvider{
		"ollama": llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaChatModel),
	}

	if cfg.OpenAIAPIKey != "" {
		p, err := llm.NewLiteLLMProvider(llm.LiteLLMConfig{
			Provider: "openai",
			APIKey:   cfg.OpenAIAPIKey,
			BaseURL:  cfg.OpenAIEndpoint,
			Model:    cfg.OpenAIModel,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring openai provider: %w", err)
		}
		providers["openai"] = p
	}

	if cfg.AnthropicAPIKey != "" {
		p, err := llm.NewLiteLLMProvider(llm.LiteLLMConfig{
			Provider: "anthropic",
			APIKey:   cfg.AnthropicAPIKey,
			Model:    cfg.AnthropicModel,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring anthropic provider: %w", err)
		}
		providers["anthropic"] = p
	}

	router := llm.NewRouter(providers, cfg.LLMProvider)
	provider, err := router.Route(context.Background())
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// serverConfig converts a LISTEN_ADDR value into the server config.
func serverConfig(addr string) (server.Config, error) {
	cfg := server.DefaultConfig()

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return server.Config{}, fmt.Errorf("invalid LISTEN_ADDR %q: %w", addr, err)
	}
	if host != "" {
		cfg.Host = host
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return server.Config{}, fmt.Errorf("invalid LISTEN_ADDR port %q: %w", portStr, err)
	}
	cfg.Port = port
	return cfg, nil
}

func printHelp(out io.Writer) {
	helpText := `AcmeDesk - customer support agent service

Usage:
  acmedesk [command]

Commands:
  serve        Start the HTTP server (default)
  migrate      Apply pending app-database migrations
  seed         Populate the support database through the MCP server
  version      Show version information
  help         Show this help message

Environment:
  LISTEN_ADDR             HTTP listen address (default: ":8080")
  APP_DB_PATH             Application database path (default: "acmedesk.db")
  SUPPORT_DB_PATH         Support database served over MCP (default: "support.db")
  MCP_SERVER_COMMAND      MCP server binary (default: "sqlmcp")
  MCP_SERVER_ARGS         extra MCP server arguments, whitespace-separated
  LLM_PROVIDER            "ollama", "openai" or "anthropic" (default: "ollama")
  GOVERNANCE_POLICY_PATH  Optional YAML policy override
  JWT_SECRET              Required for issuing and validating tokens`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
