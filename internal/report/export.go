package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// ExportFilename names the CSV export for a run started at t.
func ExportFilename(t time.Time) string {
	return "results_" + t.Format("20060102_150405") + ".csv"
}

// Columns returns the export header: the required input columns, extra
// input columns in source order, then the classification fields.
func Columns(records []model.EnrichedRecord) []string {
	header := []string{"date", "amount", "description"}
	if len(records) > 0 {
		for _, col := range records[0].Extra {
			header = append(header, col.Name)
		}
	}
	return append(header, "category", "confidence", "is_anomaly", "notes")
}

// Row flattens one record in Columns order.
func Row(rec model.EnrichedRecord) []string {
	row := []string{
		rec.Date,
		strconv.FormatFloat(rec.Amount, 'f', 2, 64),
		rec.Description,
	}
	for _, col := range rec.Extra {
		row = append(row, col.Value)
	}
	return append(row,
		rec.Category,
		string(rec.Confidence),
		strconv.FormatBool(rec.IsAnomaly),
		rec.Notes,
	)
}

// WriteCSV writes records as a CSV table.
func WriteCSV(w io.Writer, records []model.EnrichedRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns(records)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range records {
		if err := writer.Write(Row(rec)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ExportFile writes records to dir under ExportFilename(at) and returns the path.
func ExportFile(dir string, at time.Time, records []model.EnrichedRecord) (path string, err error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path = filepath.Join(dir, ExportFilename(at))
	file, err := os.Create(path) //nolint:gosec // path is built from a configured directory
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", closeErr)
		}
	}()

	if err := WriteCSV(file, records); err != nil {
		return "", err
	}
	return path, nil
}
