package reference

import (
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/macrolens/nutrilog/internal/domain"
	"github.com/spf13/cast"
)

// Column names every reference table must carry
const (
	ColumnName     = "display_name"
	ColumnCalories = "calories_per_100g"
	ColumnProtein  = "protein_g"
	ColumnCarbs    = "carbs_g"
	ColumnFat      = "fat_g"
)

var requiredColumns = []string{ColumnName, ColumnCalories, ColumnProtein, ColumnCarbs, ColumnFat}

// Supported source formats
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// DefaultTable is the SQLite table read when none is configured
const DefaultTable = "foods"

// NewSource returns the reference source for path. An empty format is
// inferred from the file extension.
func NewSource(format, path, table string) (domain.ReferenceSource, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no path configured", domain.ErrReferenceTable)
	}

	if format == "" {
		format = detectFormat(path)
	}

	switch strings.ToLower(format) {
	case FormatCSV:
		return NewCSVSource(path), nil
	case FormatSQLite:
		src, err := NewSQLiteSource(path, table)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrReferenceTable, format)
	}
}

func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// columnIndex maps a required column name to its position in a row
type columnIndex map[string]int

// resolveColumns locates the required columns in a header row.
// Matching ignores case and surrounding whitespace; extra columns are ignored.
func resolveColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(requiredColumns))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", "))
	}

	return cols, nil
}

// tableBuilder accumulates validated rows in source order
type tableBuilder struct {
	source string
	foods  []domain.ReferenceFood
	seen   map[string]bool
}

func newTableBuilder(source string) *tableBuilder {
	return &tableBuilder{
		source: source,
		seen:   make(map[string]bool),
	}
}

// add validates one row. row is the 1-based data row number used in messages.
func (b *tableBuilder) add(row int, name string, calories, protein, carbs, fat any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: %w: row %d", domain.ErrReferenceTable, domain.ErrMissingDisplayName, row)
	}

	if b.seen[name] {
		log.Printf("[REFERENCE] %s row %d: duplicate food %q skipped", b.source, row, name)
		return nil
	}
	b.seen[name] = true

	b.foods = append(b.foods, domain.ReferenceFood{
		Name:            name,
		CaloriesPer100g: b.nutrient(row, name, ColumnCalories, calories),
		ProteinG:        b.nutrient(row, name, ColumnProtein, protein),
		CarbsG:          b.nutrient(row, name, ColumnCarbs, carbs),
		FatG:            b.nutrient(row, name, ColumnFat, fat),
	})
	return nil
}

func (b *tableBuilder) nutrient(row int, name, column string, raw any) float64 {
	v, ok := coerceNutrient(raw)
	if !ok {
		log.Printf("[REFERENCE] %s row %d (%s): %s value %v treated as 0", b.source, row, name, column, raw)
	}
	return v
}

func (b *tableBuilder) result() ([]domain.ReferenceFood, error) {
	if len(b.foods) == 0 {
		return nil, fmt.Errorf("%w: %s has no food rows", domain.ErrReferenceTable, b.source)
	}
	log.Printf("[REFERENCE] Loaded %d foods from %s", len(b.foods), b.source)
	return b.foods, nil
}

// coerceNutrient converts a raw cell to a non-negative finite number.
// Anything unusable becomes 0 and ok is false; empty cells count as unusable.
func coerceNutrient(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case []byte:
		raw = string(v)
	}
	if s, isString := raw.(string); isString {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		raw = s
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}
