package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"

	"github.com/oshokin/sleep-alarm/internal/logger"
)

// Autostart actions.
const (
	AutostartEnable  = "enable"
	AutostartDisable = "disable"
	AutostartStatus  = "status"
)

// ErrUnknownAutostartAction is returned for an action other than enable, disable or status.
var ErrUnknownAutostartAction = errors.New("autostart action must be enable, disable or status")

// autostartEntry is the part of autostart.App the command drives.
type autostartEntry interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

// NewAutostartApp describes the daemon as a login item started with the given config.
func NewAutostartApp(configPath string) (*autostart.App, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}

	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}

	exec := []string{execPath}

	if configPath != "" {
		absolute, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}

		exec = append(exec, "--config", absolute)
	}

	return &autostart.App{
		Name:        "sleep-alarm",
		DisplayName: "Sleep Alarm",
		Exec:        exec,
	}, nil
}

// Autostart applies action to the login item and reports whether it is enabled afterwards.
func Autostart(ctx context.Context, entry autostartEntry, action string) (bool, error) {
	switch action {
	case AutostartStatus:
		return entry.IsEnabled(), nil
	case AutostartEnable:
		if entry.IsEnabled() {
			return true, nil
		}

		if err := entry.Enable(); err != nil {
			return false, fmt.Errorf("enable autostart: %w", err)
		}

		logger.Info(ctx, "Autostart enabled")

		return true, nil
	case AutostartDisable:
		if !entry.IsEnabled() {
			return false, nil
		}

		if err := entry.Disable(); err != nil {
			return true, fmt.Errorf("disable autostart: %w", err)
		}

		logger.Info(ctx, "Autostart disabled")

		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownAutostartAction, action)
	}
}
