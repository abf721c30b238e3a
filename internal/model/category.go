package model

import "strings"

// Uncategorized is both a valid classifier answer and the universal fallback category.
const Uncategorized = "Uncategorized"

// vocabulary is the fixed, ordered category list offered to the classifier.
var vocabulary = []string{
	"Travel",
	"Meals",
	"Software",
	"Utilities",
	"Office Supplies",
	"Marketing",
	"Services",
	"Rent",
	"Equipment",
	"Insurance",
	"Taxes",
	"Miscellaneous",
	Uncategorized,
}

// DefaultCategories returns a copy of the category vocabulary.
func DefaultCategories() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// CanonicalCategory maps a label to its vocabulary spelling, ignoring case and
// surrounding whitespace. The second return value reports whether it matched.
func CanonicalCategory(label string) (string, bool) {
	trimmed := strings.TrimSpace(label)
	for _, cat := range vocabulary {
		if strings.EqualFold(cat, trimmed) {
			return cat, true
		}
	}
	return label, false
}

// EnsureUncategorized returns categories with Uncategorized appended if absent.
func EnsureUncategorized(categories []string) []string {
	for _, cat := range categories {
		if cat == Uncategorized {
			return categories
		}
	}
	out := make([]string, 0, len(categories)+1)
	out = append(out, categories...)
	return append(out, Uncategorized)
}
