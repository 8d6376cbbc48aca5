// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResetsInvalidValues(t *testing.T) {
	cfg := &Config{}
	cfg.Editor.TabWidth = -2
	cfg.Editor.ScrollOff = -1
	cfg.Snippet.Reentry = "bogus"
	cfg.validate()

	assert.Equal(t, DefaultTabWidth, cfg.Editor.TabWidth)
	assert.Equal(t, DefaultScrollOff, cfg.Editor.ScrollOff)
	assert.Equal(t, StatusBarHeight, cfg.Editor.StatusBarHeight)
	assert.Equal(t, "info", cfg.Logger.LogLevel)
	assert.Equal(t, "confirm-prior", cfg.Snippet.Reentry)
}

func TestLoadFromFileKeepsDefaultsForUnsetKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[editor]\ntab_width = 8\n\n[snippet]\nreentry = \"reject\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := NewDefaultConfig()
	require.NoError(t, loadFromFile(path, cfg, false))

	assert.Equal(t, 8, cfg.Editor.TabWidth)
	assert.Equal(t, "reject", cfg.Snippet.Reentry)
	assert.Equal(t, DefaultScrollOff, cfg.Editor.ScrollOff)
	assert.True(t, cfg.Editor.AutoPair)
	assert.Equal(t, "info", cfg.Logger.LogLevel)
}

func TestLoadFromFileMissingIsNotError(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, loadFromFile(filepath.Join(t.TempDir(), "absent.toml"), cfg, false))
	assert.Equal(t, DefaultTabWidth, cfg.Editor.TabWidth)
}
