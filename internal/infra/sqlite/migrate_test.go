// Tests for the migration system.
package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/matiasleandrokruk/acmedesk/internal/infra/sqlite"
)

// TestMigrate_RunsAllMigrations verifies that MigrateUp applies all pending migrations.
func TestMigrate_RunsAllMigrations(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v; want nil", err)
	}

	var count int
	row := db.QueryRow("SELECT COUNT(*) FROM schema_migrations")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("SELECT COUNT(*) FROM schema_migrations error = %v", err)
	}

	if count == 0 {
		t.Error("schema_migrations has 0 rows after MigrateUp; want > 0")
	}
}

// TestMigrate_Idempotent verifies that running MigrateUp twice does not fail.
func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() first run error = %v; want nil", err)
	}

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() second run error = %v; want nil (idempotent)", err)
	}
}

// TestMigrate_TablesCreated verifies the core schema exists after migration.
func TestMigrate_TablesCreated(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	for _, table := range []string{"workspace", "user_account", "audit_event"} {
		assertTableExists(t, db, table)
	}
}

// TestMigrate_ForeignKeyConstraintEnforced verifies that FK constraints are active.
// Inserting a user_account with a non-existent workspace_id must fail.
func TestMigrate_ForeignKeyConstraintEnforced(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO user_account (id, workspace_id, email, display_name, password_hash, status, created_at, updated_at)
		VALUES ('user-1', 'nonexistent-workspace', 'test@example.com', 'Test User', 'x', 'active', datetime('now'), datetime('now'))
	`)

	if err == nil {
		t.Error("INSERT with non-existent workspace_id succeeded; want FK constraint error")
	}
}

// TestMigrate_WorkspaceSlugUnique verifies the UNIQUE constraint on workspace.slug.
func TestMigrate_WorkspaceSlugUnique(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO workspace (id, name, slug, created_at, updated_at)
		VALUES ('ws-1', 'Workspace One', 'acme', datetime('now'), datetime('now'))
	`)
	if err != nil {
		t.Fatalf("first workspace insert error = %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO workspace (id, name, slug, created_at, updated_at)
		VALUES ('ws-2', 'Workspace Two', 'acme', datetime('now'), datetime('now'))
	`)

	if err == nil {
		t.Error("duplicate slug INSERT succeeded; want UNIQUE constraint error")
	}
}

// TestMigrate_UserEmailUnique verifies the UNIQUE constraint on user_account.email.
func TestMigrate_UserEmailUnique(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO workspace (id, name, slug, created_at, updated_at)
		VALUES ('ws-1', 'Test Workspace', 'test', datetime('now'), datetime('now'))
	`); err != nil {
		t.Fatalf("workspace insert error = %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO user_account (id, workspace_id, email, display_name, password_hash, status, created_at, updated_at)
		VALUES ('user-1', 'ws-1', 'alice@example.com', 'Alice', 'x', 'active', datetime('now'), datetime('now'))
	`); err != nil {
		t.Fatalf("first user insert error = %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO user_account (id, workspace_id, email, display_name, password_hash, status, created_at, updated_at)
		VALUES ('user-2', 'ws-1', 'alice@example.com', 'Alice 2', 'x', 'active', datetime('now'), datetime('now'))
	`)

	if err == nil {
		t.Error("duplicate email INSERT succeeded; want UNIQUE constraint error")
	}
}

// TestMigrate_AuditEventInsert verifies the audit_event table accepts a full row.
func TestMigrate_AuditEventInsert(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO audit_event (id, workspace_id, actor_type, actor_id, action, resource, outcome, detail, created_at)
		VALUES ('evt-1', NULL, 'agent', NULL, 'tool.denied', 'refund_order', 'denied', '{}', datetime('now'))
	`)
	if err != nil {
		t.Fatalf("audit_event insert error = %v", err)
	}
}

// TestMigrate_Version returns the current applied migration version.
func TestMigrate_Version(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	version, err := sqlite.MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v; want nil", err)
	}

	if version < 2 {
		t.Errorf("MigrationVersion() = %d; want >= 2 after MigrateUp", version)
	}
}

// TestMigrate_OnlyAppliesPending verifies that already-applied migrations are NOT re-run.
func TestMigrate_OnlyAppliesPending(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() first error = %v", err)
	}

	var countBefore int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&countBefore); err != nil {
		t.Fatalf("count before: %v", err)
	}

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() second error = %v", err)
	}

	var countAfter int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&countAfter); err != nil {
		t.Fatalf("count after: %v", err)
	}

	if countAfter != countBefore {
		t.Errorf("schema_migrations count changed from %d to %d; want unchanged", countBefore, countAfter)
	}
}

// TestMigrationVersion_NoMigrations verifies version is 0 on fresh DB.
func TestMigrationVersion_NoMigrations(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	// Do NOT call MigrateUp — fresh DB

	version, err := sqlite.MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}

	if version != 0 {
		t.Errorf("MigrationVersion() = %d; want 0 on fresh DB", version)
	}
}

// assertTableExists fails the test if the given table doesn't exist in the DB.
func assertTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()

	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		tableName,
	).Scan(&name)

	if err == sql.ErrNoRows {
		t.Errorf("table %q not found in sqlite_master after MigrateUp", tableName)
		return
	}
	if err != nil {
		t.Fatalf("assertTableExists(%q) query error = %v", tableName, err)
	}
}
