//go:build !windows

package log

import (
	"os"
	"path/filepath"
	"runtime"
)

func getDefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "xenora"), nil
	}

	// XDG_STATE_HOME wins over XDG_CONFIG_HOME
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "xenora", "logs"), nil
	}
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "xenora", "logs"), nil
}
