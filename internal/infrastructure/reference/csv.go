package reference

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/macrolens/nutrilog/internal/domain"
)

// CSVSource reads the reference table from a CSV file with a header row
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSV reference source
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Describe identifies the source in logs and errors
func (s *CSVSource) Describe() string {
	return "csv:" + s.path
}

// Load reads every row of the file
func (s *CSVSource) Load(ctx context.Context) ([]domain.ReferenceFood, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReferenceTable, err)
	}
	defer f.Close()

	return readCSV(ctx, f, s.Describe())
}

func readCSV(ctx context.Context, r io.Reader, source string) ([]domain.ReferenceFood, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrReferenceTable, source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s header: %v", domain.ErrReferenceTable, source, err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrReferenceTable, source, err)
	}

	builder := newTableBuilder(source)
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", domain.ErrReferenceTable, source, row, err)
		}

		if err := builder.add(row,
			cell(record, cols[ColumnName]),
			cell(record, cols[ColumnCalories]),
			cell(record, cols[ColumnProtein]),
			cell(record, cols[ColumnCarbs]),
			cell(record, cols[ColumnFat]),
		); err != nil {
			return nil, err
		}
	}

	return builder.result()
}

// cell returns the field at i, or "" for short rows
func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
