package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-categorizer/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the viewer until the user quits or ctx is canceled.
func Run(ctx context.Context, run *session.Run) error {
	program := tea.NewProgram(New(run), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}
