package ingest

import (
	"strings"
	"testing"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := `Date,Amount,Description,Memo
2024-01-01,"$1,050.00",Flight to NYC,work trip
2024-01-02,12.50,"Lunch, team"
`

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Amount", "Description", "Memo"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "$1,050.00", table.Cell(0, 1))
	assert.Equal(t, "Lunch, team", table.Cell(1, 2))
	assert.Equal(t, "", table.Cell(1, 3))
	assert.Equal(t, "", table.Cell(5, 0))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestRead_DispatchesOnExtension(t *testing.T) {
	table, err := Read("expenses.CSV", strings.NewReader("date,amount,description\nd,1,x\n"))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)

	_, err = Read("expenses.xlsx", strings.NewReader(""))
	assert.ErrorIs(t, err, common.ErrUnsupportedFile)
}

func TestReadCSV_NormalizePipeline(t *testing.T) {
	input := "date,amount,description\n2024-01-01,$50.00,Flight to NYC\n2024-01-02,-10,Refund\n2024-01-03,abc,Bad row\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	txns, err := Normalize(table)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Flight to NYC", txns[0].Description)
}
