// internal/theme/theme.go
package theme

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/plume-editor/plume/internal/logger"
)

// Theme maps style names to terminal styles. Syntax categories resolve by
// their Category.String() name; UI surfaces use capitalized names.
type Theme struct {
	Name   string
	IsDark bool
	Styles map[string]tcell.Style
}

// GetStyle resolves a style name with fallback: exact name, then the part
// before the first dot, then "Default".
func (t *Theme) GetStyle(name string) tcell.Style {
	if style, ok := t.Styles[name]; ok {
		return style
	}

	if dotIndex := strings.Index(name, "."); dotIndex != -1 {
		baseName := name[:dotIndex]
		if style, ok := t.Styles[baseName]; ok {
			return style
		}
	}

	if defStyle, ok := t.Styles["Default"]; ok {
		if name != "Default" {
			logger.Debugf("Theme '%s': Style '%s' not found, falling back to 'Default'", t.Name, name)
		}
		return defStyle
	}

	logger.Warnf("Theme '%s': Style '%s' and 'Default' style not found, using tcell default.", t.Name, name)
	return tcell.StyleDefault
}

// --- Plume Dusk theme definition ---

var PlumeDusk Theme

func init() {
	pdBackground := tcell.NewHexColor(0x2a2f38) // Status bar background
	pdForeground := tcell.NewHexColor(0xc5cdd9) // Default text
	pdComment := tcell.NewHexColor(0x5c6370)    // Comments, punctuation
	pdOrange := tcell.NewHexColor(0xd19a66)     // Numbers
	pdYellow := tcell.NewHexColor(0xe5c07b)     // Modified indicator
	pdGreen := tcell.NewHexColor(0x98c379)      // Strings
	pdCyan := tcell.NewHexColor(0x56b6c2)       // Placeholder accents
	pdBlue := tcell.NewHexColor(0x61afef)       // Keywords

	baseStyle := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(pdForeground)

	PlumeDusk = Theme{
		Name:   "Plume Dusk",
		IsDark: true,
		Styles: map[string]tcell.Style{
			// --- UI Elements ---
			"Default":           baseStyle,
			"Selection":         baseStyle.Reverse(true),
			"StatusBar":         tcell.StyleDefault.Background(pdBackground).Foreground(pdForeground),
			"StatusBarModified": tcell.StyleDefault.Background(pdBackground).Foreground(pdYellow),
			"StatusBarMessage":  tcell.StyleDefault.Background(pdBackground).Foreground(pdForeground).Bold(true),
			"Gutter":            baseStyle.Foreground(pdComment),
			"FoldIndicator":     baseStyle.Foreground(pdCyan).Bold(true),
			"FoldedLine":        baseStyle.Foreground(pdComment).Italic(true),
			"Minimap":           baseStyle.Foreground(pdComment),

			// --- Snippet placeholders ---
			"PlaceholderActive":  baseStyle.Foreground(tcell.ColorBlack).Background(pdCyan),
			"PlaceholderPending": baseStyle.Underline(true).Foreground(pdCyan),

			// --- Syntax categories (names match Category.String()) ---
			"keyword":    baseStyle.Foreground(pdBlue).Bold(true),
			"string":     baseStyle.Foreground(pdGreen),
			"comment":    baseStyle.Foreground(pdComment).Italic(true),
			"number":     baseStyle.Foreground(pdOrange),
			"identifier": baseStyle.Foreground(pdForeground),
			"operator":   baseStyle.Foreground(pdForeground),
			"bracket":    baseStyle.Foreground(pdComment),
			"plain":      baseStyle,
		},
	}

	CurrentTheme = &PlumeDusk
}

// CurrentTheme is the process-wide active theme, swapped by the watcher on
// theme file changes.
var CurrentTheme *Theme

func GetCurrentTheme() *Theme {
	if CurrentTheme == nil {
		CurrentTheme = &PlumeDusk
	}
	return CurrentTheme
}

func SetCurrentTheme(theme *Theme) {
	if theme != nil {
		CurrentTheme = theme
		logger.Infof("Theme switched to: %s", theme.Name)
	}
}
