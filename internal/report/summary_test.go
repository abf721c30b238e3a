package report

import (
	"testing"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(desc, category string, amount float64, anomaly bool) model.EnrichedRecord {
	return model.EnrichedRecord{
		Transaction: model.Transaction{Date: "2024-01-01", Description: desc, Amount: amount},
		ClassificationResult: model.ClassificationResult{
			Category:   category,
			Confidence: model.ConfidenceHigh,
			IsAnomaly:  anomaly,
		},
	}
}

func TestSummarize(t *testing.T) {
	records := []model.EnrichedRecord{
		record("Coffee", "Meals", 4.5, false),
		record("Flight", "Travel", 300, true),
		record("Lunch", "Meals", 15.5, false),
		record("Mystery", model.Uncategorized, 20, true),
	}

	summary := Summarize(records)

	assert.InDelta(t, 340.0, summary.Totals.Sum, 1e-9)
	assert.Equal(t, 4, summary.Totals.Count)
	assert.InDelta(t, 85.0, summary.Totals.Mean, 1e-9)

	require.Len(t, summary.Categories, 3)
	assert.Equal(t, model.CategorySummary{Category: "Travel", Count: 1, Total: 300, Percent: 88.2}, summary.Categories[0])
	assert.Equal(t, "Meals", summary.Categories[1].Category)
	assert.Equal(t, "Uncategorized", summary.Categories[2].Category)
	assert.InDelta(t, 20.0, summary.Categories[1].Total, 1e-9)
	assert.InDelta(t, 5.9, summary.Categories[1].Percent, 1e-9)

	require.Len(t, summary.Anomalies, 2)
	assert.Equal(t, "Flight", summary.Anomalies[0].Description)
	assert.Equal(t, "Mystery", summary.Anomalies[1].Description)
}

func TestSummarizeTieBreak(t *testing.T) {
	summary := Summarize([]model.EnrichedRecord{
		record("b", "Zeta", 10, false),
		record("a", "Alpha", 10, false),
		record("c", "Mid", 10, false),
	})

	var order []string
	for _, row := range summary.Categories {
		order = append(order, row.Category)
	}
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, order)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, model.Totals{}, summary.Totals)
	assert.Empty(t, summary.Categories)
	assert.NotNil(t, summary.Categories)
	assert.Empty(t, summary.Anomalies)
}

func TestSummarizeZeroTotal(t *testing.T) {
	summary := Summarize([]model.EnrichedRecord{
		record("refund", "Meals", -5, false),
		record("charge", "Meals", 5, false),
	})
	require.Len(t, summary.Categories, 1)
	assert.Zero(t, summary.Categories[0].Percent)
}

func TestSummarizeConsistency(t *testing.T) {
	records := []model.EnrichedRecord{
		record("1", "Meals", 12.34, false),
		record("2", "Travel", 56.78, true),
		record("3", "Software", 9.99, false),
		record("4", "Meals", 1.01, true),
		record("5", "Office Supplies", 100, false),
	}
	summary := Summarize(records)

	var count int
	var total float64
	for _, row := range summary.Categories {
		count += row.Count
		total += row.Total
	}
	assert.Equal(t, summary.Totals.Count, count)
	assert.InDelta(t, summary.Totals.Sum, total, 1e-9)

	anomalies := 0
	for _, rec := range records {
		if rec.IsAnomaly {
			anomalies++
		}
	}
	assert.Len(t, summary.Anomalies, anomalies)

	// Input left untouched
	assert.Equal(t, "Meals", records[0].Category)
	assert.Len(t, records, 5)
}
