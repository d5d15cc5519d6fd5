package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unitdeck/unitdeck/internal/backend"
	"github.com/unitdeck/unitdeck/internal/controller"
	"github.com/unitdeck/unitdeck/internal/systemctl"
	"github.com/unitdeck/unitdeck/internal/ui"
)

// Config describes user-provided application options.
type Config struct {
	Binary          string
	UserScope       bool
	UnitType        string
	Interval        time.Duration
	ConfirmAttempts int
	ConfirmDelay    time.Duration
	Watch           bool
	Width           int
	Height          int
	ShowFooter      bool
	Verbose         bool
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	client := systemctl.New(systemctl.NewRunner(),
		systemctl.WithBinary(cfg.Binary),
		systemctl.WithUserScope(cfg.UserScope),
		systemctl.WithUnitType(cfg.UnitType),
	)
	watchDir := ""
	if cfg.Watch {
		watchDir = unitStateDir(cfg.UserScope)
	}
	coordinator := backend.NewCoordinator(client, cfg.Interval, watchDir)
	defer coordinator.Stop()
	ctrl := controller.New(cfg.ConfirmAttempts)
	model := ui.NewModel(client, coordinator, ctrl, cfg.ConfirmDelay, cfg.Width, cfg.Height, cfg.ShowFooter, cfg.Verbose)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// unitStateDir locates systemd's runtime unit state directory for the chosen
// scope, or returns empty when it is absent (polling alone then suffices).
func unitStateDir(userScope bool) string {
	dir := backend.DefaultWatchDir
	if userScope {
		runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
		if runtimeDir == "" {
			runtimeDir = fmt.Sprintf("/run/user/%d", os.Getuid())
		}
		dir = filepath.Join(runtimeDir, "systemd", "units")
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return ""
	}
	return dir
}
