package cml

import (
	"errors"
	"math"
	"testing"

	"github.com/roman-kulish/cml-rainfall/internal/table"
)

var linkHeader = []string{"LonA", "LonB", "latA", "latB", "CarTer_Index", "CarTer_rxFrequency", "CarTer_txFrequency"}

func TestLoadLinks(t *testing.T) {
	rows := [][]string{
		{"0", "0", "0", "0.01", "1", "18e9", "18e9"},
		{"abc", "0", "0", "0.01", "2", "18e9", "18e9"},   // non-numeric coordinate
		{"0", "0", "0", "0.01", "3.5", "18e9", "18e9"},   // non-integer identifier
		{"0", "0", "0", "0.01", "4", "18e9", ""},         // missing frequency
		{"5", "5", "45", "45", "5.0", "23e9", "23.5e9"},  // zero length, still valid
		{"0", "0", "0", "0.02", "1", "18e9", "18e9"},     // duplicate identifier
		{"1", "2", "3", "4", "6", "NaN", "18e9"},         // non-finite frequency
	}
	tbl := table.New("links.csv", linkHeader, rows)

	links, report, err := LoadLinks(tbl, DefaultLinkColumns())
	if err != nil {
		t.Fatalf("Failed to load links: %v", err)
	}

	if report.Total != 7 || report.Valid != 2 || report.Invalid != 5 {
		t.Errorf("Expected total=7 valid=2 invalid=5, got %+v", report)
	}
	if len(report.Rejections) != 5 {
		t.Fatalf("Expected 5 rejections, got %d", len(report.Rejections))
	}
	expectedRows := []int{1, 2, 3, 5, 6}
	for i, r := range report.Rejections {
		if r.Row != expectedRows[i] {
			t.Errorf("Rejection %d: expected row %d, got %d", i, expectedRows[i], r.Row)
		}
		if r.Reason == "" {
			t.Errorf("Rejection %d: expected a reason", i)
		}
	}

	if links.Len() != 2 {
		t.Fatalf("Expected 2 links, got %d", links.Len())
	}

	l, ok := links.Get(1)
	if !ok {
		t.Fatal("Expected link 1")
	}
	if math.Abs(l.Length-1.111949) > 1e-5 {
		t.Errorf("Expected length ~1.111949 km, got %v", l.Length)
	}
	if l.Polarization != Vertical {
		t.Errorf("Expected default vertical polarization, got %q", l.Polarization)
	}
	if l.FrequencyRx != 18e9 {
		t.Errorf("Expected rx frequency 18e9, got %v", l.FrequencyRx)
	}

	zero, ok := links.Get(5)
	if !ok {
		t.Fatal("Expected link 5")
	}
	if zero.Length != 0 {
		t.Errorf("Expected zero length, got %v", zero.Length)
	}

	if tbl.Value(1, "LonA") != "abc" {
		t.Error("Input table must not be mutated")
	}
}

func TestLoadLinks_Polarization(t *testing.T) {
	header := append(append([]string{}, linkHeader...), "Polarization")
	rows := [][]string{
		{"0", "0", "0", "0.01", "1", "18e9", "18e9", "H"},
		{"0", "0", "0", "0.01", "2", "18e9", "18e9", ""},
		{"0", "0", "0", "0.01", "3", "18e9", "18e9", "X"},
	}

	links, report, err := LoadLinks(table.New("links.csv", header, rows), DefaultLinkColumns())
	if err != nil {
		t.Fatalf("Failed to load links: %v", err)
	}
	if report.Invalid != 1 {
		t.Errorf("Expected 1 invalid row, got %d", report.Invalid)
	}

	if l, _ := links.Get(1); l.Polarization != Horizontal {
		t.Errorf("Expected horizontal polarization, got %q", l.Polarization)
	}
	if l, _ := links.Get(2); l.Polarization != Vertical {
		t.Errorf("Expected vertical polarization, got %q", l.Polarization)
	}
}

func TestLoadLinks_MissingColumn(t *testing.T) {
	tbl := table.New("links.csv", []string{"LonA", "LonB", "latA", "CarTer_Index"}, nil)

	_, _, err := LoadLinks(tbl, DefaultLinkColumns())
	var schemaErr *table.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected *table.SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 3 {
		t.Errorf("Expected 3 missing columns, got %v", schemaErr.Missing)
	}
}
