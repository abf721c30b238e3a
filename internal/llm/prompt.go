package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// ResponseShape is the exact JSON object the classifier is asked to return.
const ResponseShape = `{"category": "<category>", "confidence": "<high|medium|low>", "is_anomaly": <true|false>, "notes": "<brief>"}`

// BuildRequest creates the classification instruction for one transaction.
// The output depends only on its inputs. Uncategorized is always offered.
func BuildRequest(txn model.Transaction, categories []string) string {
	categories = model.EnsureUncategorized(categories)

	var b strings.Builder
	b.WriteString("Categorize this expense:\n\n")
	fmt.Fprintf(&b, "Date: %s\n", txn.Date)
	fmt.Fprintf(&b, "Amount: $%.2f\n", txn.Amount)
	fmt.Fprintf(&b, "Description: %s\n\n", txn.Description)
	fmt.Fprintf(&b, "Available categories: %s\n\n", strings.Join(categories, ", "))
	b.WriteString("Return ONLY JSON:\n")
	b.WriteString(ResponseShape)

	return b.String()
}
