package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another daemon process is alive.
var ErrAlreadyRunning = errors.New("sleep-alarm is already running")

// processLister lists running processes.
type processLister func() ([]ps.Process, error)

// ensureSingleInstance fails when another process runs the executable name.
func ensureSingleInstance(list processLister, name string) error {
	processList, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID || process.Executable() != name {
			continue
		}

		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, process.Pid())
	}

	return nil
}

// executableName returns the base name of the running binary.
func executableName() string {
	path, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}

	return filepath.Base(path)
}
