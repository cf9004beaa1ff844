package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/roman-kulish/cml-rainfall/internal/cml"
	"github.com/roman-kulish/cml-rainfall/internal/processing"
)

func f(v float64) *float64 {
	return &v
}

func testResult() *processing.Result {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	return &processing.Result{
		Link: cml.Link{
			ID:           7,
			A:            cml.Coordinate{Lon: 1, Lat: 2},
			B:            cml.Coordinate{Lon: 2, Lat: 3},
			FrequencyRx:  18e9,
			FrequencyTx:  19e9,
			Polarization: cml.Vertical,
			Length:       1.5,
		},
		Samples: []cml.Sample{
			{LinkID: 7, Timestamp: t0, Date: "2024-05-01 10:00:00", Tx: 10, Rx: -45},
			{LinkID: 7, Timestamp: t0, Date: "2024-05-01 10:00:00", Tx: 10, Rx: -46},
			{LinkID: 7, Timestamp: t1, Date: "2024-05-01 10:01:00", Tx: 10, Rx: -45.5},
		},
		TRSL:           []*float64{f(55), f(56), f(55.5)},
		Wet:            []processing.WetFlag{processing.Wet, processing.Wet, processing.WetUnknown},
		Baseline:       []*float64{f(55), f(55), nil},
		WAA:            []*float64{f(0.44), f(0.792), nil},
		AttenuationRaw: []*float64{f(-0.44), f(0.208), nil},
		Attenuation:    []*float64{f(0), f(0.208), nil},
		RainRx:         []*float64{f(0), f(2), nil},
		RainTx:         []*float64{f(1), f(4), nil},
	}
}

func TestWriteCondensed(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCondensed(&buf, testResult()); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	expected := "latitude,longitude,time,rain\n" +
		"2.5,1.5,2024-05-01 10:00:00,1.5\n" +
		"2.5,1.5,2024-05-01 10:01:00,\n"
	if buf.String() != expected {
		t.Errorf("Expected:\n%s\ngot:\n%s", expected, buf.String())
	}
}

func TestWriteDetailed(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDetailed(&buf, testResult()); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header and 3 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(detailedHeader, ",") {
		t.Errorf("Unexpected header %q", lines[0])
	}

	expected := "7,2.5,1.5,1.5,18000000000,19000000000,V,2024-05-01 10:00:00,10,-45,0,55,1,55,0.44,-0.44,0,0,1"
	if lines[1] != expected {
		t.Errorf("Expected first row %q, got %q", expected, lines[1])
	}

	expected = "7,2.5,1.5,1.5,18000000000,19000000000,V,2024-05-01 10:01:00,10,-45.5,0,55.5,,,,,,,"
	if lines[3] != expected {
		t.Errorf("Expected last row %q, got %q", expected, lines[3])
	}
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		mode   Mode
		header string
	}{
		{Condensed, "latitude,longitude,time,rain"},
		{Detailed, strings.Join(detailedHeader, ",")},
	}

	for _, tc := range testCases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			w := NewWriter(dir, "out_", tc.mode)

			path, err := w.Write(testResult())
			if err != nil {
				t.Fatalf("Failed to write: %v", err)
			}
			if path != filepath.Join(dir, "out_7.csv") {
				t.Errorf("Unexpected path %s", path)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read output: %v", err)
			}
			if !strings.HasPrefix(string(data), tc.header+"\n") {
				t.Errorf("Expected header %q, got %q", tc.header, strings.SplitN(string(data), "\n", 2)[0])
			}
		})
	}
}

func TestWriter_Write_MissingDir(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "missing"), DefaultPrefix, Condensed)
	if _, err := w.Write(testResult()); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestMedian(t *testing.T) {
	testCases := []struct {
		values   []float64
		expected float64
	}{
		{nil, 0},
		{[]float64{3}, 3},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
	}

	for _, tc := range testCases {
		in := append([]float64(nil), tc.values...)
		if got := Median(in); got != tc.expected {
			t.Errorf("Median(%v): expected %v, got %v", tc.values, tc.expected, got)
		}
		for i := range in {
			if in[i] != tc.values[i] {
				t.Errorf("Median(%v) modified its input", tc.values)
			}
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(DefaultPrefix, 42); got != "wet42.csv" {
		t.Errorf("Expected wet42.csv, got %s", got)
	}
}
