package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData indicates that a table source holds no header or no rows.
var ErrNoData = errors.New("no data available")

// SchemaError is returned when a table lacks columns a consumer requires.
type SchemaError struct {
	Source  string   // Name of the table source (file path or table name)
	Missing []string // Required columns absent from the header
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid %s: missing column(s) %s", e.Source, strings.Join(e.Missing, ", "))
}

// Table is an in-memory, column-addressable view over tabular input.
// Every value is kept as text; type coercion is left to the consumer so
// that a single malformed cell only rejects its own row.
type Table struct {
	Source string
	Header []string
	Rows   [][]string

	index map[string]int
}

// New creates a table from a header and its rows.
func New(source string, header []string, rows [][]string) *Table {
	t := &Table{
		Source: source,
		Header: header,
		Rows:   rows,
		index:  make(map[string]int, len(header)),
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, ok := t.index[name]; !ok {
			t.index[name] = i
		}
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether the header carries the given column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// RequireColumns returns a *SchemaError listing every column absent from the header.
func (t *Table) RequireColumns(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Source: t.Source, Missing: missing}
	}
	return nil
}

// Value returns the trimmed value of a column in the given row. Short rows
// and unknown columns yield an empty string.
func (t *Table) Value(row int, column string) string {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][i])
}
