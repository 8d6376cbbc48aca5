// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/plume-editor/plume/internal/logger"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger  logger.Config `toml:"logger"`  // Embed logger config under [logger] table
	Editor  EditorConfig  `toml:"editor"`  // Editor-specific settings
	Snippet SnippetConfig `toml:"snippet"` // Snippet engine settings
}

// EditorConfig holds editor-specific settings.
type EditorConfig struct {
	TabWidth        int  `toml:"tab_width"`
	ScrollOff       int  `toml:"scroll_off"`
	SystemClipboard bool `toml:"system_clipboard"`
	StatusBarHeight int  `toml:"status_bar_height"`
	AutoPair        bool `toml:"auto_pair"`
	AutoIndent      bool `toml:"auto_indent"`
	Minimap         bool `toml:"minimap"`
}

// SnippetConfig holds snippet engine settings.
type SnippetConfig struct {
	// Reentry picks the behavior when a snippet is inserted while a session
	// is active: "confirm-prior" (default) or "reject".
	Reentry string `toml:"reentry"`
	// File points at a user snippets TOML file; empty means the default
	// location under the config dir.
	File string `toml:"file"`
}

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			LogLevel:    "info",
			LogFilePath: "", // Empty means default path logic in logger.Init applies
		},
		Editor: EditorConfig{
			TabWidth:        DefaultTabWidth,
			ScrollOff:       DefaultScrollOff,
			SystemClipboard: SystemClipboard,
			StatusBarHeight: StatusBarHeight,
			AutoPair:        DefaultAutoPair,
			AutoIndent:      DefaultAutoIndent,
			Minimap:         true,
		},
		Snippet: SnippetConfig{
			Reentry: "confirm-prior",
		},
	}
}

// loadFromFile decodes a TOML file directly over cfg, so keys the file does
// not mention keep their current (default) values. A missing file is not an
// error.
func loadFromFile(filePath string, cfg *Config, verbose bool) error {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		if verbose {
			logger.Debugf("Config file not found: %s", filePath)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if len(metadata.Undecoded()) > 0 && verbose {
		logger.Warnf("Config file '%s': Unrecognized keys: %v", filePath, metadata.Undecoded())
	}
	return nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Editor.TabWidth <= 0 {
		c.Editor.TabWidth = defaults.Editor.TabWidth
	}
	if c.Editor.ScrollOff < 0 { // Allow 0
		c.Editor.ScrollOff = defaults.Editor.ScrollOff
	}
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.Editor.StatusBarHeight <= 0 {
		c.Editor.StatusBarHeight = defaults.Editor.StatusBarHeight
	}
	switch c.Snippet.Reentry {
	case "confirm-prior", "reject":
	default:
		c.Snippet.Reentry = defaults.Snippet.Reentry
	}
}

// SnippetFilePath resolves the user snippet file location.
func (c *Config) SnippetFilePath() string {
	if c.Snippet.File != "" {
		return c.Snippet.File
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, ConfigDirName, DefaultSnippetFileName)
}

// LoadConfig orchestrates loading defaults, file, applying flags, and validation.
// It should be called only once, typically from main.
func LoadConfig(configFilePath string, flags *Flags) (*Config, error) {
	loadOnce.Do(func() {
		// During initial load, avoid logging as logger isn't initialized yet
		verbose := false

		cfg := NewDefaultConfig() // Start with defaults

		// Determine effective config file path
		effectivePath := configFilePath
		if effectivePath == "" { // If flag not set, try default location
			configDir, err := os.UserConfigDir()
			if err == nil {
				effectivePath = filepath.Join(configDir, ConfigDirName, DefaultConfigFileName)
			} else {
				effectivePath = "" // Cannot load default path
			}
		}

		if effectivePath != "" {
			if err := loadFromFile(effectivePath, cfg, verbose); err != nil {
				loadErr = err
			}
		}

		// Apply flag overrides (if flags were parsed)
		if flags != nil {
			flags.ApplyOverrides(cfg, verbose)
		}

		cfg.validate()

		loadedConfig = cfg // Store globally
	})

	return loadedConfig, loadErr
}

// Get returns the loaded application configuration. Panics if LoadConfig wasn't called.
func Get() *Config {
	if loadedConfig == nil {
		// This indicates a programming error - LoadConfig should be called in main.
		panic("config.Get() called before config.LoadConfig()")
	}
	return loadedConfig
}
