// ABOUTME: Tests for SQLite database connection and schema migrations
// ABOUTME: Verifies database creation, migrated tables, and migration versioning
package sqlite

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	if db.Conn() == nil {
		t.Error("Conn() should not be nil")
	}

	if db.Path() != ":memory:" {
		t.Errorf("Path() = %v, want :memory:", db.Path())
	}
}

func TestSchemaInitialization(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	tables := []string{"frames", "record_descriptions", "case_descriptions", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s does not exist: %v", table, err)
		}
	}
}

func TestMigrateVersion(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	version, dirty, err := db.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion() error = %v", err)
	}
	if version != SchemaVersion || dirty {
		t.Errorf("MigrateVersion() = (%d, %v), want (%d, false)", version, dirty, SchemaVersion)
	}

	// Re-running is a no-op.
	if err := db.MigrateUp(); err != nil {
		t.Errorf("second MigrateUp() error = %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.MigrateDown(); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	var name string
	err = db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='frames'").Scan(&name)
	if err == nil {
		t.Error("frames table should be dropped after MigrateDown")
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "subdir", "nested", "flowscope.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestDefaultDBPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-test")
	if got, want := DefaultDBPath(), filepath.Join("/tmp/xdg-test", "flowscope", "flowscope.db"); got != want {
		t.Errorf("DefaultDBPath() = %v, want %v", got, want)
	}
}
