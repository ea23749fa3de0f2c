// Composition root for the MCP database server: opens the support database
// and registers the five database tools. No business logic lives here.
package sqlmcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/matiasleandrokruk/acmedesk/internal/infra/sqlite"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Options configure the server instance.
type Options struct {
	DBPath   string // path to the support SQLite database
	ReadOnly bool   // reject all mutating tools when set
}

// New opens the support database at opts.DBPath and returns a configured
// MCP server plus a cleanup function that closes the database. The cleanup
// function is always non-nil.
func New(opts Options) (*server.MCPServer, func(), error) {
	db, err := sqlite.NewDB(opts.DBPath)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open support db: %w", err)
	}
	cleanup := func() { _ = db.Close() }

	store := NewStore(db, opts.ReadOnly)

	s := server.NewMCPServer(
		"sqlmcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	readTool := NewReadTool(store)
	s.AddTool(readTool.Definition(), readTool.Handle)

	insertTool := NewInsertTool(store)
	s.AddTool(insertTool.Definition(), insertTool.Handle)

	updateTool := NewUpdateTool(store)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	createTableTool := NewCreateTableTool(store)
	s.AddTool(createTableTool.Definition(), createTableTool.Handle)

	describeTableTool := NewDescribeTableTool(store)
	s.AddTool(describeTableTool.Definition(), describeTableTool.Handle)

	return s, cleanup, nil
}
