package tui

import (
	"context"
	"log/slog"

	"tms-cli/internal/api"
	"tms-cli/internal/auth"
	"tms-cli/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// Deps is what the TUI needs from the command that starts it. Auth must
// already be initialized.
type Deps struct {
	Auth    *auth.Manager
	Client  *api.Client
	PerPage int
	Logger  *slog.Logger
}

func Run(deps Deps) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps.Logger = logging.OrDiscard(deps.Logger)
	m := newAppModel(ctx, deps)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		deps.Logger.Error("tui exited", slog.String("error", err.Error()))
	}
	return err
}
