// Package report aggregates enriched records and renders them for people
// and spreadsheets.
package report

import (
	"math"
	"sort"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// Summary is the aggregate view of one run.
type Summary struct {
	Categories []model.CategorySummary `json:"categories"`
	Anomalies  []model.EnrichedRecord  `json:"anomalies"`
	Totals     model.Totals            `json:"totals"`
}

// Summarize computes totals, the per-category breakdown and the anomaly
// subset. It does not modify records.
func Summarize(records []model.EnrichedRecord) Summary {
	summary := Summary{
		Categories: []model.CategorySummary{},
		Anomalies:  []model.EnrichedRecord{},
	}

	byCategory := make(map[string]*model.CategorySummary)
	for _, rec := range records {
		summary.Totals.Sum += rec.Amount
		summary.Totals.Count++

		row, ok := byCategory[rec.Category]
		if !ok {
			row = &model.CategorySummary{Category: rec.Category}
			byCategory[rec.Category] = row
		}
		row.Count++
		row.Total += rec.Amount

		if rec.IsAnomaly {
			summary.Anomalies = append(summary.Anomalies, rec)
		}
	}

	if summary.Totals.Count > 0 {
		summary.Totals.Mean = summary.Totals.Sum / float64(summary.Totals.Count)
	}

	for _, row := range byCategory {
		if summary.Totals.Sum != 0 {
			row.Percent = roundTo(row.Total/summary.Totals.Sum*100, 1)
		}
		summary.Categories = append(summary.Categories, *row)
	}

	sort.Slice(summary.Categories, func(i, j int) bool {
		a, b := summary.Categories[i], summary.Categories[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Category < b.Category
	})

	return summary
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
