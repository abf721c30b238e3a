// Package model defines the core domain models used throughout the application.
package model

// Confidence is the coarse self-reported certainty of a classification.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseErrorNote is the note attached to results whose response could not be parsed.
const ParseErrorNote = "Parse error"

// ClassificationResult is the structured answer for one transaction.
type ClassificationResult struct {
	Category   string     `json:"category"`
	Confidence Confidence `json:"confidence"`
	Notes      string     `json:"notes"`
	IsAnomaly  bool       `json:"is_anomaly"`
}

// FallbackResult returns the universal fallback used when a response is unusable.
func FallbackResult() ClassificationResult {
	return ClassificationResult{
		Category:   Uncategorized,
		Confidence: ConfidenceLow,
		IsAnomaly:  false,
		Notes:      ParseErrorNote,
	}
}

// FailureResult returns the fallback for a transaction whose classification
// call failed, keeping the error message visible in Notes.
func FailureResult(err error) ClassificationResult {
	result := FallbackResult()
	result.Notes = ""
	if err != nil {
		result.Notes = err.Error()
	}
	return result
}

// EnrichedRecord pairs a transaction with its classification.
type EnrichedRecord struct {
	ClassificationResult
	Transaction
}

// CategorySummary is one row of the per-category breakdown.
type CategorySummary struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
	Percent  float64 `json:"pct"`
}

// Totals holds the headline figures for a set of records.
type Totals struct {
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}
