package database

import (
	"path/filepath"
	"testing"
)

func TestInitCreatesReportsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reports.db")

	db, err := Init(path)
	if err != nil {
		t.Fatalf("Error initializing database: %v", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('reports', 'migrations')").Scan(&count)
	if err != nil {
		t.Fatalf("Error checking tables: %v", err)
	}

	if count != 2 {
		t.Errorf("Expected 2 tables, got %d", count)
	}
}

func TestInitIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")

	for i := 0; i < 2; i++ {
		db, err := Init(path)
		if err != nil {
			t.Fatalf("Init #%d failed: %v", i+1, err)
		}

		var applied int
		if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&applied); err != nil {
			t.Fatalf("Error counting migrations: %v", err)
		}
		if applied != 2 {
			t.Errorf("Expected 2 recorded migrations after init #%d, got %d", i+1, applied)
		}
		db.Close()
	}
}

func TestOpenSetsWAL(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "wal.db"))
	if err != nil {
		t.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("Error reading journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected journal mode 'wal', got '%s'", mode)
	}
}

func TestCheckReportsSchema(t *testing.T) {
	db, err := Init(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("Error initializing database: %v", err)
	}
	defer db.Close()

	columns, err := GetColumnNames(db, "reports")
	if err != nil {
		t.Fatalf("Error reading columns: %v", err)
	}
	if len(columns) != len(reportColumns) {
		t.Errorf("Expected %d columns, got %v", len(reportColumns), columns)
	}

	exists, err := CheckColumnExists(db, "reports", "resolved_at")
	if err != nil || !exists {
		t.Errorf("Expected resolved_at column, got %v, %v", exists, err)
	}

	if _, err := db.Exec("CREATE TABLE broken (id TEXT)"); err != nil {
		t.Fatalf("Error creating table: %v", err)
	}
	if exists, _ := CheckColumnExists(db, "broken", "status"); exists {
		t.Error("Expected status column to be absent")
	}
}

func TestCheckReportsSchemaDetectsMissingColumn(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "old.db"))
	if err != nil {
		t.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE reports (seq INTEGER PRIMARY KEY, id TEXT)"); err != nil {
		t.Fatalf("Error creating table: %v", err)
	}
	if err := CheckReportsSchema(db); err == nil {
		t.Error("Expected an error for an incomplete reports table")
	}
}
