package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
)

//go:embed default.yml
var defaultYAML []byte

// EnsureUserConfig returns the path of config.yml in dataDir, writing the
// built-in default there on first run.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(userPath, defaultYAML, 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}
