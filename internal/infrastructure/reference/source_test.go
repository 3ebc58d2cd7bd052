package reference

import (
	"testing"

	"github.com/macrolens/nutrilog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		path     string
		wantType string
	}{
		{"csv by extension", "", "data/nutrition_db_clean.csv", "csv"},
		{"sqlite by .db extension", "", "data/foods.db", "sqlite"},
		{"sqlite by .sqlite3 extension", "", "data/foods.SQLITE3", "sqlite"},
		{"unknown extension falls back to csv", "", "data/foods.txt", "csv"},
		{"explicit format wins", "sqlite", "data/foods.csv", "sqlite"},
		{"explicit format is case insensitive", "CSV", "data/foods.db", "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.format, tt.path, "")
			require.NoError(t, err)
			switch tt.wantType {
			case "csv":
				assert.IsType(t, &CSVSource{}, src)
			case "sqlite":
				assert.IsType(t, &SQLiteSource{}, src)
			}
		})
	}
}

func TestNewSource_Errors(t *testing.T) {
	_, err := NewSource("", "", "")
	assert.ErrorIs(t, err, domain.ErrReferenceTable)

	_, err = NewSource("parquet", "foods.parquet", "")
	assert.ErrorIs(t, err, domain.ErrReferenceTable)
}

func TestCoerceNutrient(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   float64
		wantOK bool
	}{
		{"float string", "2.7", 2.7, true},
		{"padded string", " 130 ", 130, true},
		{"int64", int64(42), 42, true},
		{"float64", 0.5, 0.5, true},
		{"bytes", []byte("12.5"), 12.5, true},
		{"zero", "0", 0, true},
		{"empty", "", 0, false},
		{"nil", nil, 0, false},
		{"text", "abc", 0, false},
		{"negative", "-3", 0, false},
		{"nan", "NaN", 0, false},
		{"inf", "Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceNutrient(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
