package cml

import (
	"fmt"
	"slices"
	"time"

	"github.com/roman-kulish/cml-rainfall/internal/table"
)

const (
	// TimestampLayout is the layout of the signal timestamp column.
	TimestampLayout = time.DateTime

	// CodeScaled flags rows whose levels are stored divided by 10 in the feed.
	CodeScaled = -99

	// rxRescaleMedian is the median receive level below which a partition is
	// assumed to carry receive levels multiplied by 10.
	rxRescaleMedian = -100.0
)

// SignalColumns maps sample attributes to the column names of the signals table.
type SignalColumns struct {
	ID        string `yaml:"id"`
	Tx        string `yaml:"tx"`
	Rx        string `yaml:"rx"`
	Code      string `yaml:"code"`
	Timestamp string `yaml:"timestamp"`
}

// DefaultSignalColumns returns the column names used by the operator feed.
func DefaultSignalColumns() SignalColumns {
	return SignalColumns{
		ID:        "CarTer_Index",
		Tx:        "tx",
		Rx:        "rx",
		Code:      "t",
		Timestamp: "date",
	}
}

// Required returns the columns a signals table must carry.
func (c SignalColumns) Required() []string {
	return []string{c.ID, c.Tx, c.Rx, c.Code, c.Timestamp}
}

// Sample is a single raw transmit/receive level reading of a link.
type Sample struct {
	LinkID    int64
	Timestamp time.Time // UTC, second resolution
	Date      string    // Timestamp as found in the source
	Tx        float64   // Transmit level
	Rx        float64   // Receive level
	Code      int       // Encoding flag of the feed
}

// SignalReport summarises a signals load.
type SignalReport struct {
	Total      int
	Valid      int
	Invalid    int
	Adjusted   int     // Rows rescaled because of the code flag
	Rescaled   []int64 // Partitions whose receive levels were divided by 10
	Rejections []Rejection
}

// SignalStore holds cleaned samples partitioned by link and ordered by time.
type SignalStore struct {
	partitions map[int64][]Sample
}

// Partition returns the samples of a link.
func (s *SignalStore) Partition(id int64) ([]Sample, bool) {
	p, ok := s.partitions[id]
	return p, ok
}

// IDs returns the link identifiers present in the store, sorted.
func (s *SignalStore) IDs() []int64 {
	ids := make([]int64, 0, len(s.partitions))
	for id := range s.partitions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of partitions.
func (s *SignalStore) Len() int {
	return len(s.partitions)
}

// LoadSignals validates the rows of a signals table, normalises units and
// partitions the samples per link.
//
// Two independent unit corrections are applied: rows flagged with CodeScaled
// get both levels multiplied by 10, and partitions whose median receive level
// is below -100 get every receive level divided by 10. Each is applied
// exactly once.
func LoadSignals(t *table.Table, columns SignalColumns) (*SignalStore, SignalReport, error) {
	var report SignalReport

	if err := t.RequireColumns(columns.Required()...); err != nil {
		return nil, report, err
	}

	store := &SignalStore{partitions: make(map[int64][]Sample)}

	for row := 0; row < t.Len(); row++ {
		report.Total++

		sample, err := parseSample(t, row, columns)
		if err != nil {
			report.Invalid++
			report.Rejections = append(report.Rejections, Rejection{Row: row, Reason: err.Error()})
			continue
		}

		if sample.Code == CodeScaled {
			sample.Tx *= 10
			sample.Rx *= 10
			report.Adjusted++
		}

		store.partitions[sample.LinkID] = append(store.partitions[sample.LinkID], sample)
		report.Valid++
	}

	for _, id := range store.IDs() {
		p := store.partitions[id]
		slices.SortStableFunc(p, func(a, b Sample) int {
			return a.Timestamp.Compare(b.Timestamp)
		})

		if RxMedian(p) < rxRescaleMedian {
			for i := range p {
				p[i].Rx /= 10
			}
			report.Rescaled = append(report.Rescaled, id)
		}
	}

	return store, report, nil
}

// RxMedian returns the median receive level of the samples.
func RxMedian(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}

	rx := make([]float64, len(samples))
	for i, s := range samples {
		rx[i] = s.Rx
	}
	slices.Sort(rx)

	n := len(rx)
	if n%2 == 1 {
		return rx[n/2]
	}
	return (rx[n/2-1] + rx[n/2]) / 2
}

func parseSample(t *table.Table, row int, c SignalColumns) (Sample, error) {
	var s Sample
	var err error

	if s.LinkID, err = parseInt(t.Value(row, c.ID)); err != nil {
		return s, fmt.Errorf("%s: %w", c.ID, err)
	}
	if s.Tx, err = parseFloat(t.Value(row, c.Tx)); err != nil {
		return s, fmt.Errorf("%s: %w", c.Tx, err)
	}
	if s.Rx, err = parseFloat(t.Value(row, c.Rx)); err != nil {
		return s, fmt.Errorf("%s: %w", c.Rx, err)
	}

	s.Date = t.Value(row, c.Timestamp)
	if s.Timestamp, err = time.ParseInLocation(TimestampLayout, s.Date, time.UTC); err != nil {
		return s, fmt.Errorf("%s: invalid timestamp %q", c.Timestamp, s.Date)
	}

	// The code flag is only compared against CodeScaled; anything that is not
	// an integer simply carries no encoding hint.
	if code, err := parseInt(t.Value(row, c.Code)); err == nil {
		s.Code = int(code)
	}

	return s, nil
}
