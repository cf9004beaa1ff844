package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/roman-kulish/cml-rainfall/internal/cml"
	"github.com/roman-kulish/cml-rainfall/internal/table"
)

const (
	timeColumn = "time"
	rainColumn = "rain"
)

// ErrNoLinks is returned when no output file matches the prefix.
var ErrNoLinks = errors.New("no link files found")

// RainData is a time × link grid of rain rates. Rows follow Times, columns
// follow Links.
type RainData struct {
	Links                        []int64
	Times                        []time.Time
	TimestampStart, TimestampEnd time.Time
	MaxRain                      float64
	Samples                      int
	Cells                        [][]*float64
}

// Width returns the number of links.
func (d *RainData) Width() int {
	return len(d.Links)
}

// Height returns the number of distinct timestamps.
func (d *RainData) Height() int {
	return len(d.Times)
}

// LinkFiles returns the condensed output files in dir named <prefix><id>.csv,
// keyed by link identifier.
func LinkFiles(dir, prefix string) (map[int64]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	files := make(map[int64]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".csv"), 10, 64)
		if err != nil {
			continue
		}
		files[id] = filepath.Join(dir, name)
	}

	return files, nil
}

// LoadRainData reads every condensed output file in dir into a grid.
func LoadRainData(dir, prefix string) (*RainData, error) {
	files, err := LinkFiles(dir, prefix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoLinks, filepath.Join(dir, prefix+"*.csv"))
	}

	d := &RainData{}
	for id := range files {
		d.Links = append(d.Links, id)
	}
	slices.Sort(d.Links)

	series := make([]map[time.Time]*float64, len(d.Links))
	seen := make(map[time.Time]struct{})

	for i, id := range d.Links {
		rates, err := readLinkFile(files[id])
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", id, err)
		}
		series[i] = rates

		for ts, rain := range rates {
			seen[ts] = struct{}{}
			if rain != nil {
				d.MaxRain = max(d.MaxRain, *rain)
				d.Samples++
			}
		}
	}

	for ts := range seen {
		d.Times = append(d.Times, ts)
	}
	slices.SortFunc(d.Times, func(a, b time.Time) int { return a.Compare(b) })

	if len(d.Times) > 0 {
		d.TimestampStart = d.Times[0]
		d.TimestampEnd = d.Times[len(d.Times)-1]
	}

	d.Cells = make([][]*float64, len(d.Times))
	for y, ts := range d.Times {
		row := make([]*float64, len(d.Links))
		for x := range d.Links {
			row[x] = series[x][ts]
		}
		d.Cells[y] = row
	}

	return d, nil
}

// readLinkFile returns the rain rates of a condensed output file; empty rates
// are nil.
func readLinkFile(path string) (map[time.Time]*float64, error) {
	t, err := table.ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	if err = t.RequireColumns(timeColumn, rainColumn); err != nil {
		return nil, err
	}

	rates := make(map[time.Time]*float64, t.Len())
	for row := 0; row < t.Len(); row++ {
		ts, err := time.ParseInLocation(cml.TimestampLayout, t.Value(row, timeColumn), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid time: %w", row, err)
		}

		v := t.Value(row, rainColumn)
		if v == "" {
			rates[ts] = nil
			continue
		}
		rain, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid rain rate: %w", row, err)
		}
		rates[ts] = &rain
	}

	return rates, nil
}
