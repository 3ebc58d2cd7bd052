package reference

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"

	"github.com/macrolens/nutrilog/internal/domain"
	_ "modernc.org/sqlite"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads the reference table from a SQLite database
type SQLiteSource struct {
	path  string
	table string
}

// NewSQLiteSource creates a SQLite reference source reading table (default "foods")
func NewSQLiteSource(path, table string) (*SQLiteSource, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", domain.ErrReferenceTable, table)
	}
	return &SQLiteSource{path: path, table: table}, nil
}

// Describe identifies the source in logs and errors
func (s *SQLiteSource) Describe() string {
	return fmt.Sprintf("sqlite:%s#%s", s.path, s.table)
}

// Load reads every row of the configured table
func (s *SQLiteSource) Load(ctx context.Context) ([]domain.ReferenceFood, error) {
	// sql.Open would silently create a missing file
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReferenceTable, err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrReferenceTable, s.path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", s.table))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", domain.ErrReferenceTable, s.Describe(), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %s columns: %v", domain.ErrReferenceTable, s.Describe(), err)
	}
	cols, err := resolveColumns(columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrReferenceTable, s.Describe(), err)
	}

	builder := newTableBuilder(s.Describe())
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for row := 1; rows.Next(); row++ {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", domain.ErrReferenceTable, s.Describe(), row, err)
		}

		if err := builder.add(row,
			textValue(values[cols[ColumnName]]),
			values[cols[ColumnCalories]],
			values[cols[ColumnProtein]],
			values[cols[ColumnCarbs]],
			values[cols[ColumnFat]],
		); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrReferenceTable, s.Describe(), err)
	}

	return builder.result()
}

func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
