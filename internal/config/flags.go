// internal/config/flags.go
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/plume-editor/plume/internal/logger"
)

// Flags holds values parsed from command-line flags.
// Use pointers to distinguish between unset flags and zero-value flags.
type Flags struct {
	ConfigFilePath  *string
	Version         *bool
	LogLevel        *string
	LogFilePath     *string
	TabWidth        *int
	ScrollOff       *int
	EnableTags      *string
	DisableTags     *string
	SystemClipboard *bool
	AutoPair        *bool
	AutoIndent      *bool
	SnippetReentry  *string
	SnippetFile     *string
}

// DefineFlags sets up the command-line flags and associates them with the Flags struct fields.
func (f *Flags) DefineFlags() {
	f.ConfigFilePath = flag.String("config", "", fmt.Sprintf("Path to TOML configuration file (default ~/.config/%s/%s)", ConfigDirName, DefaultConfigFileName))
	f.Version = flag.Bool("version", false, "Show version information and exit")
	f.LogLevel = flag.String("loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	f.LogFilePath = flag.String("logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	f.TabWidth = flag.Int("tabwidth", 0, "Number of spaces per tab - Overrides config file") // Use 0 to indicate unset
	f.ScrollOff = flag.Int("scrolloff", -1, "Lines of context above/below cursor - Overrides config file")
	f.EnableTags = flag.String("log-tags", "", "Comma-separated list of log tags to enable - Overrides config file")
	f.DisableTags = flag.String("log-disable-tags", "", "Comma-separated list of log tags to disable - Overrides config file")
	f.SystemClipboard = flag.Bool("system-clipboard", false, "Use system clipboard instead of internal clipboard")
	f.AutoPair = flag.Bool("autopair", true, "Auto-close brackets and quotes - Overrides config file")
	f.AutoIndent = flag.Bool("autoindent", true, "Carry indentation onto new lines - Overrides config file")
	f.SnippetReentry = flag.String("snippet-reentry", "", "Policy when inserting a snippet during a session: confirm-prior or reject")
	f.SnippetFile = flag.String("snippets", "", "Path to user snippets TOML file - Overrides config file")
}

// ParseFlags parses the defined command-line flags into the Flags struct.
// It returns the remaining non-flag arguments (e.g., the file path).
func (f *Flags) ParseFlags() []string {
	f.DefineFlags()
	flag.Parse()
	return flag.Args() // Return non-flag arguments
}

// ApplyOverrides updates the Config struct with values from flags *if* they were set.
func (f *Flags) ApplyOverrides(cfg *Config, verbose bool) {
	// Visit only processes flags that were actually set
	flag.Visit(func(fl *flag.Flag) {
		if verbose {
			logger.DebugTagf("config", "Applying flag override: %s", fl.Name)
		}
		switch fl.Name {
		case "loglevel":
			if f.LogLevel != nil && *f.LogLevel != "" {
				cfg.Logger.LogLevel = *f.LogLevel
			}
		case "logfile":
			if f.LogFilePath != nil { // Empty string is valid ("-")
				cfg.Logger.LogFilePath = *f.LogFilePath
			}
		case "tabwidth":
			if f.TabWidth != nil && *f.TabWidth > 0 {
				cfg.Editor.TabWidth = *f.TabWidth // Only override if positive
			}
		case "scrolloff":
			if f.ScrollOff != nil && *f.ScrollOff >= 0 {
				cfg.Editor.ScrollOff = *f.ScrollOff
			}
		case "system-clipboard":
			if f.SystemClipboard != nil {
				cfg.Editor.SystemClipboard = *f.SystemClipboard
			}
		case "autopair":
			if f.AutoPair != nil {
				cfg.Editor.AutoPair = *f.AutoPair
			}
		case "autoindent":
			if f.AutoIndent != nil {
				cfg.Editor.AutoIndent = *f.AutoIndent
			}
		case "snippet-reentry":
			if f.SnippetReentry != nil && *f.SnippetReentry != "" {
				cfg.Snippet.Reentry = *f.SnippetReentry
			}
		case "snippets":
			if f.SnippetFile != nil && *f.SnippetFile != "" {
				cfg.Snippet.File = *f.SnippetFile
			}
		case "log-tags":
			if f.EnableTags != nil && *f.EnableTags != "" {
				cfg.Logger.EnabledTags = splitCommaList(*f.EnableTags)
			}
		case "log-disable-tags":
			if f.DisableTags != nil && *f.DisableTags != "" {
				cfg.Logger.DisabledTags = splitCommaList(*f.DisableTags)
			}
		}
	})
}

// Helper function to split comma-separated list
func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
