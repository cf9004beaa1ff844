package cml

import (
	"fmt"
	"math"
	"strconv"

	"github.com/roman-kulish/cml-rainfall/internal/table"
)

// LinkColumns maps link attributes to the column names of the links table.
type LinkColumns struct {
	ID           string `yaml:"id"`
	LonA         string `yaml:"lonA"`
	LatA         string `yaml:"latA"`
	LonB         string `yaml:"lonB"`
	LatB         string `yaml:"latB"`
	FrequencyRx  string `yaml:"frequencyRx"`
	FrequencyTx  string `yaml:"frequencyTx"`
	Polarization string `yaml:"polarization"` // Optional column
}

// DefaultLinkColumns returns the column names used by the operator feed.
func DefaultLinkColumns() LinkColumns {
	return LinkColumns{
		ID:           "CarTer_Index",
		LonA:         "LonA",
		LatA:         "latA",
		LonB:         "LonB",
		LatB:         "latB",
		FrequencyRx:  "CarTer_rxFrequency",
		FrequencyTx:  "CarTer_txFrequency",
		Polarization: "Polarization",
	}
}

// Required returns the columns a links table must carry.
func (c LinkColumns) Required() []string {
	return []string{c.LonA, c.LatA, c.LonB, c.LatB, c.ID, c.FrequencyRx, c.FrequencyTx}
}

// Rejection describes a dropped input row.
type Rejection struct {
	Row    int    // Zero-based data row index in the source table
	Reason string // Why the row was dropped
}

// LinkReport summarises a links load.
type LinkReport struct {
	Total      int
	Valid      int
	Invalid    int
	Rejections []Rejection
}

// LinkTable is the validated set of links in input order.
type LinkTable struct {
	Links []Link
	index map[int64]int
}

// Get returns the link with the given identifier.
func (lt *LinkTable) Get(id int64) (*Link, bool) {
	i, ok := lt.index[id]
	if !ok {
		return nil, false
	}
	return &lt.Links[i], true
}

// Len returns the number of links.
func (lt *LinkTable) Len() int {
	return len(lt.Links)
}

// LoadLinks validates the rows of a links table and derives each link's
// path length. A row failing coercion is rejected and reported; it never
// fails the whole load. Only a missing required column is an error.
func LoadLinks(t *table.Table, columns LinkColumns) (*LinkTable, LinkReport, error) {
	var report LinkReport

	if err := t.RequireColumns(columns.Required()...); err != nil {
		return nil, report, err
	}

	lt := &LinkTable{index: make(map[int64]int, t.Len())}
	hasPol := columns.Polarization != "" && t.Has(columns.Polarization)

	for row := 0; row < t.Len(); row++ {
		report.Total++

		link, err := parseLink(t, row, columns, hasPol)
		if err == nil {
			if _, dup := lt.index[link.ID]; dup {
				err = fmt.Errorf("duplicate link identifier %d", link.ID)
			}
		}
		if err != nil {
			report.Invalid++
			report.Rejections = append(report.Rejections, Rejection{Row: row, Reason: err.Error()})
			continue
		}

		link.Length = Haversine(link.A, link.B)
		lt.index[link.ID] = len(lt.Links)
		lt.Links = append(lt.Links, link)
		report.Valid++
	}

	return lt, report, nil
}

func parseLink(t *table.Table, row int, c LinkColumns, hasPol bool) (Link, error) {
	var link Link
	var err error

	if link.ID, err = parseInt(t.Value(row, c.ID)); err != nil {
		return link, fmt.Errorf("%s: %w", c.ID, err)
	}

	floats := []struct {
		column string
		dst    *float64
	}{
		{c.LonA, &link.A.Lon},
		{c.LatA, &link.A.Lat},
		{c.LonB, &link.B.Lon},
		{c.LatB, &link.B.Lat},
		{c.FrequencyRx, &link.FrequencyRx},
		{c.FrequencyTx, &link.FrequencyTx},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloat(t.Value(row, f.column)); err != nil {
			return link, fmt.Errorf("%s: %w", f.column, err)
		}
	}

	link.Polarization = Vertical
	if hasPol {
		if link.Polarization, err = ParsePolarization(t.Value(row, c.Polarization)); err != nil {
			return link, fmt.Errorf("%s: %w", c.Polarization, err)
		}
	}

	return link, nil
}

// parseFloat accepts finite decimal numbers only.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}

// parseInt accepts integers, including integral values written as floats
// (e.g. "12.0"), which is how spreadsheet exports often carry identifiers.
func parseInt(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := parseFloat(s)
	if err != nil || math.Abs(f) >= 1<<63 || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int64(f), nil
}
