package config

import (
	"os"
	"path/filepath"
	"runtime"
)

func Dir() string {
	if override := os.Getenv("SYSGRAPH_CONFIG_DIR"); override != "" {
		return override
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".sysgraph"
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "sysgraph")
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "sysgraph")
	default:
		return filepath.Join(home, ".config", "sysgraph")
	}
}

// RecordPath is the default sqlite file for recorded sessions.
func RecordPath() string {
	return filepath.Join(Dir(), "recordings.db")
}

func LogPath() string {
	return filepath.Join(Dir(), "sysgraph.log")
}
