// Package ingest reads tabular transaction files and normalizes them into
// clean transactions ready for classification.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/common"
)

// RawTable is an untyped table as read from a file: a header row and data rows.
// Rows may be ragged; missing cells read as empty strings.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Cell returns the value at row/col, or "" when the row is short.
func (t RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// ReadFile opens path and reads it with the reader matching its extension.
func ReadFile(path string) (RawTable, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return Read(filepath.Base(path), f)
}

// Read dispatches on the file name's extension (.csv, .ofx, .qfx).
func Read(name string, r io.Reader) (RawTable, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ReadCSV(r)
	case ".ofx", ".qfx":
		return ReadOFX(r)
	default:
		return RawTable{}, fmt.Errorf("%w: %q (expected .csv, .ofx or .qfx)", common.ErrUnsupportedFile, name)
	}
}
