// Package logger provides configurable logging for the editor.
package logger

import (
	"log/slog"
	"strings"
)

// Config holds the logger settings, loadable from the [logger] config table.
type Config struct {
	// LogLevel is the minimum level to log ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`

	// LogFilePath is the output log file. Empty or "-" means stderr.
	LogFilePath string `toml:"log_file"`

	// EnabledTags only logs tagged messages with these tags (if non-empty).
	EnabledTags []string `toml:"enabled_tags"`
	// DisabledTags drops messages with these tags. Overrides EnabledTags.
	DisabledTags []string `toml:"disabled_tags"`

	level           slog.Level
	enabledTagsSet  map[string]struct{}
	disabledTagsSet map[string]struct{}
}

// NewConfig returns a Config with defaults.
func NewConfig() Config {
	return Config{LogLevel: "info"}
}

// process parses the string level and builds tag lookup sets.
func (c *Config) process() {
	c.level = slog.LevelInfo
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		c.level = slog.LevelDebug
	case "info":
		c.level = slog.LevelInfo
	case "warn", "warning":
		c.level = slog.LevelWarn
	case "error", "err":
		c.level = slog.LevelError
	}

	c.enabledTagsSet = sliceToSet(c.EnabledTags)
	c.disabledTagsSet = sliceToSet(c.DisabledTags)
}

func sliceToSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item != "" {
			set[strings.ToLower(item)] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
