package report

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

// FormatMoney renders an amount as dollars and cents.
func FormatMoney(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-$%.2f", -amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}

// Render draws the metric tiles, category table and anomaly list.
func Render(summary Summary) string {
	var b strings.Builder

	b.WriteString(cli.FormatTitle("Expense Summary"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		cli.RenderMetric("Total", FormatMoney(summary.Totals.Sum)),
		cli.RenderMetric("Count", fmt.Sprintf("%d", summary.Totals.Count)),
		cli.RenderMetric("Average", FormatMoney(summary.Totals.Mean)),
		cli.RenderMetric("Anomalies", fmt.Sprintf("%d", len(summary.Anomalies))),
	))
	b.WriteString("\n\n")

	b.WriteString(renderCategories(summary))
	b.WriteString("\n")
	b.WriteString(renderAnomalies(summary))

	return b.String()
}

func renderCategories(summary Summary) string {
	if len(summary.Categories) == 0 {
		return cli.SubtleStyle.Render("No categorized transactions.") + "\n"
	}

	width := len("Category")
	for _, row := range summary.Categories {
		width = max(width, lipgloss.Width(row.Category))
	}

	var b strings.Builder
	b.WriteString(cli.TableHeaderStyle.Render(fmt.Sprintf("%-*s  %6s  %12s  %6s", width, "Category", "Count", "Total", "Pct")))
	b.WriteString("\n")
	for _, row := range summary.Categories {
		b.WriteString(cli.TableCellStyle.Render(fmt.Sprintf("%-*s  %6d  %12s  %5.1f%%",
			width, row.Category, row.Count, FormatMoney(row.Total), row.Percent)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderAnomalies(summary Summary) string {
	if len(summary.Anomalies) == 0 {
		return cli.FormatSuccess("No anomalies flagged.") + "\n"
	}

	var b strings.Builder
	b.WriteString(cli.FormatWarning(fmt.Sprintf("%d anomalies flagged", len(summary.Anomalies))))
	b.WriteString("\n")
	for _, rec := range summary.Anomalies {
		line := fmt.Sprintf("  %s  %s  %s", rec.Date, FormatMoney(rec.Amount), rec.Description)
		if rec.Notes != "" {
			line += cli.SubtleStyle.Render("  (" + rec.Notes + ")")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
