// Package paths resolves the per-user directories packerci reads and writes.
//
// Resolution order:
// 1. PACKERCI_HOME (portable root) → $PACKERCI_HOME/{config,state}
// 2. XDG env vars → $XDG_*_HOME/packerci
// 3. Platform defaults → ~/.config/packerci, ~/.local/state/packerci
package paths

import (
	"os"
	"path/filepath"
)

const appName = "packerci"

// InstallationsFileName is the name of the user-level installations file.
const InstallationsFileName = "installations.yml"

func getConfigHome() string {
	if home := os.Getenv("PACKERCI_HOME"); home != "" {
		return filepath.Join(home, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", appName)
	}
	return ""
}

func getStateHome() string {
	if home := os.Getenv("PACKERCI_HOME"); home != "" {
		return filepath.Join(home, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return filepath.Join(xdgStateHome, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state", appName)
	}
	return ""
}

// ConfigDir returns the packerci configuration directory.
func ConfigDir() string {
	return getConfigHome()
}

// StateDir returns the packerci state directory.
// Used for log files.
func StateDir() string {
	return getStateHome()
}

// InstallationsFile returns the user-level installations file, or "" when no
// home directory can be determined.
func InstallationsFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, InstallationsFileName)
}

// EnsureDirs creates the packerci directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
