package ui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"StoryBuilder/internal/session"
)

// Run boots the TUI program and blocks until it exits.
func Run(ctx context.Context, sess *session.Session, theme string, logger *slog.Logger) error {
	m := initialModel(ctx, sess, theme, logger)
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
