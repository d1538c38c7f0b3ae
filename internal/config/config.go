// Package config loads vibe-distill settings from the standard TOML
// locations, with defaults for everything.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all vibe-distill configuration.
type Config struct {
	CaptureDir string `toml:"capture_dir"` // session event logs + _links.jsonl
	StateDir   string `toml:"state_dir"`   // sqlite database
	ProjectDir string `toml:"project_dir"` // working tree for diff capture
	SpecFile   string `toml:"spec_file"`   // plan document for drift analysis

	Archive ArchiveConfig `toml:"archive"`
	Watch   WatchConfig   `toml:"watch"`
}

type ArchiveConfig struct {
	Compress bool   `toml:"compress"`
	Dir      string `toml:"dir"` // defaults to capture_dir/archive
}

type WatchConfig struct {
	SettleSeconds int `toml:"settle_seconds"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CaptureDir: "~/.vibe-distill/capture",
		StateDir:   "~/.vibe-distill/state",
		Archive: ArchiveConfig{
			Compress: true,
		},
		Watch: WatchConfig{
			SettleSeconds: 2,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	cfg.CaptureDir = expandHome(cfg.CaptureDir)
	cfg.StateDir = expandHome(cfg.StateDir)
	cfg.ProjectDir = expandHome(cfg.ProjectDir)
	cfg.SpecFile = expandHome(cfg.SpecFile)
	cfg.Archive.Dir = expandHome(cfg.Archive.Dir)

	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "vibe-distill", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "vibe-distill", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// LinksPath returns the shared cross-agent links log.
func (c Config) LinksPath() string {
	return filepath.Join(c.CaptureDir, "_links.jsonl")
}

// SessionLogPath returns the event log path for a session id.
func (c Config) SessionLogPath(sessionID string) string {
	return filepath.Join(c.CaptureDir, sessionID+".jsonl")
}

// DBPath returns the sessions database path.
func (c Config) DBPath() string {
	return filepath.Join(c.StateDir, "sessions.db")
}

// ArchiveDir returns the configured archive directory, defaulting to a
// subdirectory of the capture dir.
func (c Config) ArchiveDir() string {
	if c.Archive.Dir != "" {
		return c.Archive.Dir
	}
	return filepath.Join(c.CaptureDir, "archive")
}
