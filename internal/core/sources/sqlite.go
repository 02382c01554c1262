package sources

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/supplierdash/internal/core"
)

// DefaultTable is read from database sources when no table is configured.
const DefaultTable = "suppliers"

func init() {
	core.RegisterSource(core.SourceDefinition{
		Kind:       "sqlite",
		Label:      "SQLite database",
		Schemes:    []string{"sqlite"},
		Extensions: []string{".db", ".sqlite", ".sqlite3"},
		Open:       openSQLite,
	})
}

// sqliteSource reads every row of one table from a database file, opened
// read-only for the duration of each read.
type sqliteSource struct {
	fileSource
	table string
}

func openSQLite(spec core.SourceSpec) (core.Source, error) {
	location := strings.TrimPrefix(spec.Location, "sqlite://")
	fs, err := newFileSource("sqlite", location)
	if err != nil {
		return nil, err
	}
	table := spec.Table
	if table == "" {
		table = DefaultTable
	}
	fs.handle += "#" + table
	return &sqliteSource{fileSource: fs, table: table}, nil
}

func (s *sqliteSource) Read(ctx context.Context) (*core.RawTable, error) {
	db, err := sql.Open("sqlite", "file:"+s.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdentifier(s.table))
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", s.table, err)
	}
	defer rows.Close()

	return scanRows(ctx, rows)
}

// quoteIdentifier quotes a SQL identifier, doubling embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// scanRows decodes a database/sql result set into a raw table. Values are
// left for core.CellText to coerce, except []byte which becomes text.
func scanRows(ctx context.Context, rows *sql.Rows) (*core.RawTable, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	table := &core.RawTable{Columns: cols}
	for n := 0; rows.Next(); n++ {
		if err := checkContext(ctx, n); err != nil {
			return nil, err
		}

		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return table, nil
}
