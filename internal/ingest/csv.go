package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ReadCSV reads a comma-separated table whose first record is the header.
func ReadCSV(r io.Reader) (RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return RawTable{}, fmt.Errorf("empty CSV file")
	}
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	table := RawTable{Header: header}
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return RawTable{}, fmt.Errorf("failed to read CSV row %d: %w", len(table.Rows)+2, readErr)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}
