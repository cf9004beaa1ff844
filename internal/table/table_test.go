package table

import (
	"errors"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	input := "\uFEFFid,tx,rx\n1,10,-40\n2,11\n"

	tbl, err := ReadCSV("signals.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if tbl.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", tbl.Len())
	}
	if !tbl.Has("id") {
		t.Error("Expected BOM to be stripped from the first column name")
	}
	if v := tbl.Value(0, "rx"); v != "-40" {
		t.Errorf("Expected rx -40, got %q", v)
	}
	if v := tbl.Value(1, "rx"); v != "" {
		t.Errorf("Expected empty value for short row, got %q", v)
	}
	if v := tbl.Value(0, "unknown"); v != "" {
		t.Errorf("Expected empty value for unknown column, got %q", v)
	}
}

func TestReadCSV_StrayQuotes(t *testing.T) {
	input := "id,rx\n1,-40\n2,-4\"1\n3,\"-4\"2\"\n4,-43\n"

	tbl, err := ReadCSV("signals.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if tbl.Len() != 4 {
		t.Fatalf("Expected 4 rows, got %d", tbl.Len())
	}

	testCases := []struct {
		row      int
		expected string
	}{
		{0, "-40"},
		{1, `-4"1`},
		{2, `-4"2`},
		{3, "-43"},
	}
	for _, tc := range testCases {
		if v := tbl.Value(tc.row, "rx"); v != tc.expected {
			t.Errorf("Row %d: expected rx %q, got %q", tc.row, tc.expected, v)
		}
	}
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV("empty.csv", strings.NewReader(""))
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func TestRequireColumns(t *testing.T) {
	tbl := New("links.csv", []string{"LonA", " latA ", "LonB"}, nil)

	if err := tbl.RequireColumns("LonA", "latA"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	err := tbl.RequireColumns("LonA", "latB", "CarTer_Index")
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected *SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 2 || schemaErr.Missing[0] != "latB" || schemaErr.Missing[1] != "CarTer_Index" {
		t.Errorf("Unexpected missing columns: %v", schemaErr.Missing)
	}
	if !strings.Contains(err.Error(), "links.csv") {
		t.Errorf("Expected source in error message, got %q", err.Error())
	}
}
