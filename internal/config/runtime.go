package config

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultRuntimeDir = ".factbot"

// GetRuntimePath resolves FACTBOT_RUNTIME_PATH. Relative paths, with or without
// a leading "~/", are placed under the home directory.
func GetRuntimePath() string {
	path := os.Getenv("FACTBOT_RUNTIME_PATH")
	if path == "" {
		path = defaultRuntimeDir
	}
	if filepath.IsAbs(path) {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}
