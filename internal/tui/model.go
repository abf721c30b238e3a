// Package tui provides an interactive terminal viewer for a categorization run.
package tui

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/spice-categorizer/internal/cli"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/report"
	"github.com/Veraticus/spice-categorizer/internal/session"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// Tab identifies one of the viewer's pages.
type Tab int

// Tabs in display order.
const (
	TabAll Tab = iota
	TabCategories
	TabAnomalies
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabAll:
		return "All"
	case TabCategories:
		return "Categories"
	case TabAnomalies:
		return "Anomalies"
	default:
		return "?"
	}
}

const (
	defaultHeight = 20
	chromeHeight  = 12 // metrics, tab bar and help
)

// Model holds the viewer state.
type Model struct {
	run      *session.Run
	keymap   KeyMap
	help     help.Model
	tables   [tabCount]table.Model
	active   Tab
	width    int
	height   int
	quitting bool
}

// New builds a viewer for run.
func New(run *session.Run) Model {
	m := Model{
		run:    run,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		height: defaultHeight + chromeHeight,
	}

	m.tables[TabAll] = newTable(recordColumns(), recordRows(run.Records))
	m.tables[TabCategories] = newTable(categoryColumns(), categoryRows(run.Summary.Categories))
	m.tables[TabAnomalies] = newTable(recordColumns(), recordRows(run.Summary.Anomalies))
	m.tables[TabAll].Focus()

	return m
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(defaultHeight),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(cli.TableHeaderStyle.GetBorderStyle()).
		BorderForeground(cli.BorderColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.Foreground(cli.PrimaryColor).Bold(true)
	t.SetStyles(s)

	return t
}

func recordColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 12},
		{Title: "Description", Width: 30},
		{Title: "Category", Width: 18},
		{Title: "Confidence", Width: 10},
		{Title: "Notes", Width: 30},
	}
}

func recordRows(records []model.EnrichedRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, table.Row{
			rec.Date,
			report.FormatMoney(rec.Amount),
			rec.Description,
			rec.Category,
			string(rec.Confidence),
			rec.Notes,
		})
	}
	return rows
}

func categoryColumns() []table.Column {
	return []table.Column{
		{Title: "Category", Width: 20},
		{Title: "Count", Width: 8},
		{Title: "Total", Width: 14},
		{Title: "Pct", Width: 8},
	}
}

func categoryRows(summaries []model.CategorySummary) []table.Row {
	rows := make([]table.Row, 0, len(summaries))
	for _, row := range summaries {
		rows = append(rows, table.Row{
			row.Category,
			strconv.Itoa(row.Count),
			report.FormatMoney(row.Total),
			fmt.Sprintf("%.1f%%", row.Percent),
		})
	}
	return rows
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		for i := range m.tables {
			m.tables[i].SetHeight(max(msg.Height-chromeHeight, 3))
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keymap.NextTab):
			m.setActive((m.active + 1) % tabCount)
			return m, nil
		case key.Matches(msg, m.keymap.PrevTab):
			m.setActive((m.active + tabCount - 1) % tabCount)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.tables[m.active], cmd = m.tables[m.active].Update(msg)
	return m, cmd
}

func (m *Model) setActive(tab Tab) {
	m.tables[m.active].Blur()
	m.active = tab
	m.tables[m.active].Focus()
}

// Active returns the selected tab.
func (m Model) Active() Tab {
	return m.active
}
