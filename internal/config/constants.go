package config

import "time"

// Base application details
const AppName = "plume"
const ConfigDirName = "plume"
const ThemesDirName = "themes"
const DefaultThemeFileName = "theme.toml"     // Active theme file
const DefaultConfigFileName = "config.toml"   // Main config file
const DefaultSnippetFileName = "snippets.toml" // User snippet templates
const DefaultLogFileName = "plume.log"

// UI Layout
const StatusBarHeight = 1
const MinimapWidth = 10

// Status Bar
const MessageTimeout = 4 * time.Second

// These could be moved to NewDefaultConfig(), keeping here for now
const DefaultTabWidth = 4
const DefaultScrollOff = 3
const SystemClipboard = true
const DefaultAutoPair = true
const DefaultAutoIndent = true
