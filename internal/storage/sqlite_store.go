package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/cml-rainfall/internal/table"
)

// ErrNoTable is returned when the requested table does not exist in the database.
var ErrNoTable = errors.New("table does not exist")

const selectTablesSQL = `
SELECT
    name
FROM sqlite_master
WHERE
    type IN ('table', 'view')
    AND name NOT LIKE 'sqlite_%'
ORDER BY name`

// SqliteStore gives read-only access to link and signal tables kept in a
// SQLite database. The connection is opened lazily on first use.
type SqliteStore struct {
	dbPath string

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the SQLite database at dbPath
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// Tables returns the names of all user tables and views, sorted by name.
func (s *SqliteStore) Tables(ctx context.Context) (names []string, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectTablesSQL)
	if err != nil {
		err = fmt.Errorf("querying tables: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			err = fmt.Errorf("scanning table name: %w", err)
			return
		}
		names = append(names, name)
	}
	err = rows.Err()
	return
}

// ReadTable loads every row of the named table. Values are rendered as text
// the same way a CSV export of the table would carry them: NULL becomes an
// empty string, numbers use the shortest representation and datetimes use
// the "2006-01-02 15:04:05" layout in UTC.
func (s *SqliteStore) ReadTable(ctx context.Context, name string) (t *table.Table, err error) {
	names, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, n := range names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("reading %s: %w", name, ErrNoTable)
	}

	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", quoteIdentifier(name)))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", name, err)
	}
	defer closeWithError(rows, &err)

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading %s columns: %w", name, err)
	}

	var records [][]string
	values := make([]any, len(header))
	dest := make([]any, len(header))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", name, err)
		}

		record := make([]string, len(values))
		for i, v := range values {
			record[i] = textValue(v)
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", name, err)
	}

	return table.New(fmt.Sprintf("%s:%s", s.dbPath, name), header, records), nil
}

// Close closes the database connection. It is safe to call Close multiple times.
func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		if s.readDB != nil {
			s.closeErr = s.readDB.Close()
			s.readDB = nil
		}
	})

	return s.closeErr
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func textValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.UTC().Format(time.DateTime)
	default:
		return fmt.Sprint(val)
	}
}
