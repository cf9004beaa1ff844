package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func createTestDB(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "cml.sqlite")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE links (LonA REAL, latA REAL, LonB REAL, latB REAL, CarTer_Index INTEGER, CarTer_rxFrequency REAL, CarTer_txFrequency REAL)`,
		`INSERT INTO links VALUES (0, 0, 0, 0.01, 1, 18000000000, 18500000000)`,
		`CREATE TABLE signals (CarTer_Index INTEGER, tx REAL, rx REAL, t INTEGER, date TEXT)`,
		`INSERT INTO signals VALUES (1, 10.5, -45, 0, '2024-05-01 10:00:00')`,
		`INSERT INTO signals VALUES (1, NULL, -46, -99, '2024-05-01 10:01:00')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to execute %q: %v", stmt, err)
		}
	}

	return dbPath
}

func TestSqliteStore_ReadTable(t *testing.T) {
	store := NewSqliteStore(createTestDB(t))
	defer store.Close()

	ctx := context.Background()

	names, err := store.Tables(ctx)
	if err != nil {
		t.Fatalf("Failed to list tables: %v", err)
	}
	if len(names) != 2 || names[0] != "links" || names[1] != "signals" {
		t.Errorf("Expected [links signals], got %v", names)
	}

	signals, err := store.ReadTable(ctx, "signals")
	if err != nil {
		t.Fatalf("Failed to read signals: %v", err)
	}
	if signals.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", signals.Len())
	}

	testCases := []struct {
		row      int
		column   string
		expected string
	}{
		{0, "CarTer_Index", "1"},
		{0, "tx", "10.5"},
		{0, "rx", "-45"},
		{0, "date", "2024-05-01 10:00:00"},
		{1, "tx", ""},
		{1, "t", "-99"},
	}
	for _, tc := range testCases {
		if v := signals.Value(tc.row, tc.column); v != tc.expected {
			t.Errorf("Row %d column %s: expected %q, got %q", tc.row, tc.column, tc.expected, v)
		}
	}

	links, err := store.ReadTable(ctx, "links")
	if err != nil {
		t.Fatalf("Failed to read links: %v", err)
	}
	if v := links.Value(0, "CarTer_rxFrequency"); v != "18000000000" {
		t.Errorf("Expected frequency 18000000000, got %q", v)
	}
}

func TestSqliteStore_MissingTable(t *testing.T) {
	store := NewSqliteStore(createTestDB(t))
	defer store.Close()

	_, err := store.ReadTable(context.Background(), "nope")
	if !errors.Is(err, ErrNoTable) {
		t.Errorf("Expected ErrNoTable, got %v", err)
	}
}

func TestSqliteStore_CloseTwice(t *testing.T) {
	store := NewSqliteStore(createTestDB(t))
	if _, err := store.Tables(context.Background()); err != nil {
		t.Fatalf("Failed to list tables: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Errorf("Expected no error on first close, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Expected no error on second close, got %v", err)
	}
}
