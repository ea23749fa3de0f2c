// sqlmcp - MCP database server for the AcmeDesk support dataset.
//
// Serves the support SQLite database over stdio using the Model Context
// Protocol. The agent process spawns one sqlmcp per tool call and talks
// JSON-RPC over the child's stdin/stdout.
//
// Usage:
//
//	sqlmcp serve     # Start MCP server (stdio transport)
//	sqlmcp version   # Print version
//
// Configuration (env):
//
//	SUPPORT_DB_PATH  Path to the support database (default: support.db)
//	READONLY         "true"/"1" rejects insert/update/create tools
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/matiasleandrokruk/acmedesk/internal/infra/config"
	"github.com/matiasleandrokruk/acmedesk/internal/sqlmcp"
	"github.com/matiasleandrokruk/acmedesk/internal/version"
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Println(version.String())
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	s, cleanup, err := sqlmcp.New(sqlmcp.Options{
		DBPath:   cfg.SupportDBPath,
		ReadOnly: cfg.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// stdout belongs to the MCP stdio transport; anything human-facing
	// goes to stderr.
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `sqlmcp — MCP database server for the AcmeDesk support dataset

Usage:
  sqlmcp serve     Start the MCP server (stdio transport)
  sqlmcp version   Print version

Environment:
  SUPPORT_DB_PATH  Path to the support database (default: support.db)
  READONLY         "true"/"1" rejects insert/update/create tools
`)
}
