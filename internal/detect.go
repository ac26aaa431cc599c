package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DataPaths holds the default locations used by the CLI
type DataPaths struct {
	BaseDir    string // per-user data directory for slot drivers
	ConfigDir  string // ~/.chatstate
	ConfigFile string // ~/.chatstate/config.yaml
	EnvFile    string // ~/.chatstate/.env
}

// DetectDataPaths detects the data and config paths based on the operating system
func DetectDataPaths() (DataPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataPaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var baseDir string
	switch runtime.GOOS {
	case "darwin":
		baseDir = filepath.Join(home, "Library/Application Support/chatstate")
	case "linux":
		// Honour XDG_DATA_HOME when set, else ~/.local/share
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			baseDir = filepath.Join(xdg, "chatstate")
		} else {
			baseDir = filepath.Join(home, ".local/share/chatstate")
		}
	default:
		configDir, err := os.UserConfigDir()
		if err != nil {
			return DataPaths{}, fmt.Errorf("unsupported OS: %s: %w", runtime.GOOS, err)
		}
		baseDir = filepath.Join(configDir, "chatstate")
	}

	configDir := filepath.Join(home, ".chatstate")
	return DataPaths{
		BaseDir:    baseDir,
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, "config.yaml"),
		EnvFile:    filepath.Join(configDir, ".env"),
	}, nil
}

// PathFor returns the default on-disk location for a slot driver.
// Memory and redis have none.
func (dp DataPaths) PathFor(slotType SlotType) string {
	switch slotType {
	case SlotFile:
		return filepath.Join(dp.BaseDir, "slots")
	case SlotSQLite:
		return filepath.Join(dp.BaseDir, "chatstate.db")
	case SlotPebble:
		return filepath.Join(dp.BaseDir, "pebble")
	default:
		return ""
	}
}

// EnsureBaseDir creates the data directory
func (dp DataPaths) EnsureBaseDir() error {
	return os.MkdirAll(dp.BaseDir, 0755)
}

// ConfigExists checks if the config file exists
func (dp DataPaths) ConfigExists() bool {
	_, err := os.Stat(dp.ConfigFile)
	return err == nil
}
