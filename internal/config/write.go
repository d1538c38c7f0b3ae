package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the vibe-distill config directory path.
// Uses $XDG_CONFIG_HOME/vibe-distill if set, otherwise ~/.config/vibe-distill.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vibe-distill")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "vibe-distill")
}

// WriteDefault writes a default config.toml pointing at captureDir.
// Returns the config file path. Skips if config.toml already exists.
func WriteDefault(captureDir string) (string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, nil // already exists
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	content := fmt.Sprintf(`capture_dir = %q
state_dir = "~/.vibe-distill/state"
project_dir = ""
spec_file = ""

[archive]
compress = true
dir = ""

[watch]
settle_seconds = 2
`, CompressHome(captureDir))

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}

	return path, nil
}

// CompressHome replaces the $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
