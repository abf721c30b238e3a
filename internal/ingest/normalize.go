package ingest

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
)

// Required column names, after header normalization.
const (
	ColumnDate        = "date"
	ColumnAmount      = "amount"
	ColumnDescription = "description"
)

var requiredColumns = []string{ColumnDate, ColumnAmount, ColumnDescription}

// amountReplacer strips currency symbols and grouping separators.
var amountReplacer = strings.NewReplacer("$", "", ",", "")

// decimalAmount is plain decimal notation. strconv.ParseFloat alone would also
// take hex floats, underscores, inf and nan.
var decimalAmount = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// NormalizeHeader folds a column name for matching: trimmed, lower case, no BOM.
func NormalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

// ParseAmount coerces an amount cell. It reports false for anything that is
// not a finite decimal number once "$" and "," are removed.
func ParseAmount(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(amountReplacer.Replace(raw))
	if !decimalAmount.MatchString(cleaned) {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// Normalize validates the table schema and converts rows into transactions.
//
// A missing required column fails the whole table with a *common.SchemaError.
// Rows whose amount is unparseable or not positive, or whose description is
// blank, are dropped without error. Remaining rows keep their input order.
func Normalize(table RawTable) ([]model.Transaction, error) {
	index := make(map[string]int, len(table.Header))
	for i, name := range table.Header {
		key := NormalizeHeader(name)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &common.SchemaError{Missing: missing}
	}

	dateIdx, amountIdx, descIdx := index[ColumnDate], index[ColumnAmount], index[ColumnDescription]

	var extraIdx []int
	for i := range table.Header {
		if i == dateIdx || i == amountIdx || i == descIdx {
			continue
		}
		extraIdx = append(extraIdx, i)
	}

	transactions := make([]model.Transaction, 0, len(table.Rows))
	dropped := 0
	for row := range table.Rows {
		amount, ok := ParseAmount(table.Cell(row, amountIdx))
		if !ok || amount <= 0 {
			dropped++
			continue
		}

		description := strings.TrimSpace(table.Cell(row, descIdx))
		if description == "" {
			dropped++
			continue
		}

		txn := model.Transaction{
			Date:        table.Cell(row, dateIdx),
			Amount:      amount,
			Description: description,
		}
		for _, col := range extraIdx {
			txn.Extra = append(txn.Extra, model.Column{
				Name:  NormalizeHeader(table.Header[col]),
				Value: table.Cell(row, col),
			})
		}
		transactions = append(transactions, txn)
	}

	if dropped > 0 {
		slog.Debug("Dropped rows during normalization",
			"dropped", dropped,
			"kept", len(transactions))
	}

	return transactions, nil
}
