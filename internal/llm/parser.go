package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// Outcome names the branch Parse took on a response.
type Outcome int

// Parse outcomes.
const (
	// OutcomeParsed means a JSON object was found and read field by field.
	OutcomeParsed Outcome = iota
	// OutcomeNoObject means the text had no "{" before a later "}".
	OutcomeNoObject
	// OutcomeInvalidJSON means the braced candidate did not decode as an object.
	OutcomeInvalidJSON
)

func (o Outcome) String() string {
	switch o {
	case OutcomeParsed:
		return "parsed"
	case OutcomeNoObject:
		return "no_object"
	case OutcomeInvalidJSON:
		return "invalid_json"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

const codeFence = "```"

// Parse extracts a classification from raw model output. It never fails:
// unusable text yields model.FallbackResult.
func Parse(raw string) model.ClassificationResult {
	result, _ := ParseOutcome(raw)
	return result
}

// ParseOutcome is Parse that also reports which branch produced the result.
func ParseOutcome(raw string) (model.ClassificationResult, Outcome) {
	text := stripCodeFence(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return model.FallbackResult(), OutcomeNoObject
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil || fields == nil {
		return model.FallbackResult(), OutcomeInvalidJSON
	}

	return model.ClassificationResult{
		Category:   categoryField(fields),
		Confidence: model.Confidence(textField(fields, "confidence", string(model.ConfidenceMedium))),
		IsAnomaly:  boolField(fields, "is_anomaly"),
		Notes:      textField(fields, "notes", ""),
	}, OutcomeParsed
}

// stripCodeFence returns the body of the first fenced block, minus a leading
// "json" language tag. Text without a fence is returned unchanged.
func stripCodeFence(text string) string {
	open := strings.Index(text, codeFence)
	if open < 0 {
		return text
	}

	body := text[open+len(codeFence):]
	if closing := strings.Index(body, codeFence); closing >= 0 {
		body = body[:closing]
	}

	body = strings.TrimSpace(body)
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	return strings.TrimSpace(body)
}

// categoryField reads the category, mapping vocabulary matches to their
// canonical spelling and keeping unknown labels as returned.
func categoryField(fields map[string]any) string {
	category := textField(fields, "category", model.Uncategorized)
	if canonical, ok := model.CanonicalCategory(category); ok {
		return canonical
	}
	return category
}

// textField returns a string field, rendering non-string values as JSON text.
// Missing and null fields yield def.
func textField(fields map[string]any, key, def string) string {
	value, ok := fields[key]
	if !ok || value == nil {
		return def
	}
	if s, isString := value.(string); isString {
		return s
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(encoded)
}

// boolField accepts JSON booleans, boolean-like strings and non-zero numbers.
func boolField(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	case float64:
		return v != 0
	default:
		return false
	}
}
