package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noahxzhu/remindme/internal/app"
)

// Run blocks until the user quits or ctx is cancelled. The overlay must
// already be attached to the controller's presenter.
func Run(ctx context.Context, ctrl *app.Controller, overlay *Overlay) error {
	p := tea.NewProgram(NewModel(ctx, ctrl, overlay), tea.WithAltScreen(), tea.WithContext(ctx))

	overlay.OnChange(func() { p.Send(alarmsChangedMsg{}) })
	ctrl.OnChange(func() { go p.Send(refreshMsg{}) })
	ctrl.OnAdvisory(func(msg string) { go p.Send(advisoryMsg(msg)) })

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run terminal ui: %w", err)
	}
	return nil
}
