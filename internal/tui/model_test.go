package tui

import (
	"testing"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *session.Run {
	return session.NewRun("expenses.csv", []model.EnrichedRecord{
		{
			Transaction:          model.Transaction{Date: "2024-01-01", Description: "Coffee", Amount: 4.5},
			ClassificationResult: model.ClassificationResult{Category: "Meals", Confidence: model.ConfidenceHigh},
		},
		{
			Transaction: model.Transaction{Date: "2024-01-02", Description: "Flight", Amount: 300},
			ClassificationResult: model.ClassificationResult{
				Category: "Travel", Confidence: model.ConfidenceMedium, IsAnomaly: true, Notes: "large",
			},
		},
	}, time.Now())
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next
}

func TestTabSwitching(t *testing.T) {
	m := New(sampleRun())
	assert.Equal(t, TabAll, m.Active())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabCategories, m.Active())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabAnomalies, m.Active())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabAll, m.Active(), "tabs wrap around")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, TabAnomalies, m.Active())
}

func TestTablesMatchRun(t *testing.T) {
	m := New(sampleRun())

	assert.Len(t, m.tables[TabAll].Rows(), 2)
	assert.Len(t, m.tables[TabCategories].Rows(), 2)
	require.Len(t, m.tables[TabAnomalies].Rows(), 1)
	assert.Equal(t, "Flight", m.tables[TabAnomalies].Rows()[0][2])
	assert.Equal(t, "Travel", m.tables[TabCategories].Rows()[0][0])
	assert.Equal(t, "98.5%", m.tables[TabCategories].Rows()[0][3])
}

func TestView(t *testing.T) {
	m := New(sampleRun())
	view := m.View()

	for _, want := range []string{"expenses.csv", "Total", "$304.50", "Categories", "Anomalies (1)", "Coffee"} {
		assert.Contains(t, view, want)
	}
}

func TestViewEmptyAnomalies(t *testing.T) {
	run := session.NewRun("empty.csv", nil, time.Now())
	m := New(run)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})

	assert.Equal(t, TabAnomalies, m.Active())
	assert.Contains(t, m.View(), "No anomalies flagged.")
}

func TestQuit(t *testing.T) {
	m := New(sampleRun())
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)

	next, ok := updated.(Model)
	require.True(t, ok)
	assert.Empty(t, next.View())
}

func TestWindowResize(t *testing.T) {
	m := New(sampleRun())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, ok := updated.(Model)
	require.True(t, ok)
	assert.Equal(t, 120, next.width)
	assert.Equal(t, 120, next.help.Width)
	assert.Less(t, next.tables[TabAll].Height(), 40)
}
