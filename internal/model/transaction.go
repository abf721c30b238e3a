package model

// Column is a named input cell carried through normalization untouched.
type Column struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Transaction represents a single normalized expense row.
type Transaction struct {
	Date        string   `json:"date"` // Opaque label from the source, never parsed
	Description string   `json:"description"`
	Extra       []Column `json:"extra,omitempty"` // Non-required input columns in source order
	Amount      float64  `json:"amount"`
}

// Label returns a short description suitable for progress displays.
func (t Transaction) Label(maxLen int) string {
	runes := []rune(t.Description)
	if maxLen <= 0 || len(runes) <= maxLen {
		return t.Description
	}
	return string(runes[:maxLen]) + "..."
}
