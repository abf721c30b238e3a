package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/cli"
	"github.com/Veraticus/spice-categorizer/internal/report"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		cli.FormatTitle(fmt.Sprintf("Results for %s", m.run.Source)),
		m.renderMetrics(),
		m.renderTabs(),
		m.renderBody(),
		m.help.View(m.keymap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderMetrics() string {
	totals := m.run.Summary.Totals
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cli.RenderMetric("Total", report.FormatMoney(totals.Sum)),
		cli.RenderMetric("Count", fmt.Sprintf("%d", totals.Count)),
		cli.RenderMetric("Average", report.FormatMoney(totals.Mean)),
		cli.RenderMetric("Anomalies", fmt.Sprintf("%d", len(m.run.Summary.Anomalies))),
	)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for tab := Tab(0); tab < tabCount; tab++ {
		label := tab.String()
		if tab == TabAnomalies {
			label = fmt.Sprintf("%s (%d)", label, len(m.run.Summary.Anomalies))
		}
		if tab == m.active {
			tabs = append(tabs, cli.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, cli.TabStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderBody() string {
	if len(m.tables[m.active].Rows()) == 0 {
		switch m.active {
		case TabAnomalies:
			return cli.FormatSuccess("No anomalies flagged.")
		default:
			return cli.SubtleStyle.Render("No transactions.")
		}
	}
	return m.tables[m.active].View()
}
