// internal/statusbar/statusbar.go
package statusbar

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/plume-editor/plume/internal/theme"
	"github.com/plume-editor/plume/internal/types"
)

// Config defines status bar behavior.
type Config struct {
	MessageTimeout time.Duration
}

// DefaultConfig provides sensible defaults.
func DefaultConfig() Config {
	return Config{MessageTimeout: 4 * time.Second}
}

// StatusBar is the UI component for the bottom status line: file name,
// modified indicator, cursor position, language, and a SNIPPET marker while
// a placeholder session is active. Temporary messages replace the default
// text until they expire.
type StatusBar struct {
	config Config
	mu     sync.Mutex

	filePath      string
	language      string
	cursorPos     types.Position
	isModified    bool
	snippetActive bool

	tempMessage     string
	tempMessageTime time.Time
}

// New creates a status bar.
func New(config Config) *StatusBar {
	return &StatusBar{config: config}
}

// SetFileInfo updates the file path and modified flag.
func (sb *StatusBar) SetFileInfo(path string, modified bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.filePath = path
	sb.isModified = modified
}

// SetLanguage updates the displayed language name.
func (sb *StatusBar) SetLanguage(name string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.language = name
}

// SetCursorInfo updates the cursor position shown.
func (sb *StatusBar) SetCursorInfo(pos types.Position) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.cursorPos = pos
}

// SetSnippetActive toggles the placeholder-session marker.
func (sb *StatusBar) SetSnippetActive(active bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.snippetActive = active
}

// SetTemporaryMessage displays a message for the configured duration.
func (sb *StatusBar) SetTemporaryMessage(format string, args ...interface{}) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = fmt.Sprintf(format, args...)
	sb.tempMessageTime = time.Now()
}

// ResetTemporaryMessage clears any temporary message.
func (sb *StatusBar) ResetTemporaryMessage() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = ""
	sb.tempMessageTime = time.Time{}
}

func (sb *StatusBar) defaultDisplayText() string {
	fPath := sb.filePath
	if fPath == "" {
		fPath = "[No Name]"
	}
	modifiedIndicator := ""
	if sb.isModified {
		modifiedIndicator = " [+]"
	}
	langIndicator := ""
	if sb.language != "" {
		langIndicator = fmt.Sprintf(" -- %s", sb.language)
	}
	snippetIndicator := ""
	if sb.snippetActive {
		snippetIndicator = " -- SNIPPET"
	}
	cursor := sb.cursorPos
	return fmt.Sprintf("%s%s -- Line: %d, Col: %d%s%s",
		fPath, modifiedIndicator, cursor.Line+1, cursor.Col+1, langIndicator, snippetIndicator)
}

// Draw renders the status bar onto the last screen row.
func (sb *StatusBar) Draw(screen tcell.Screen, width, height int) {
	if height <= 0 || width <= 0 {
		return
	}
	y := height - 1
	activeTheme := theme.GetCurrentTheme()

	sb.mu.Lock()
	tempActive := !sb.tempMessageTime.IsZero() && time.Since(sb.tempMessageTime) <= sb.config.MessageTimeout
	if !sb.tempMessageTime.IsZero() && !tempActive {
		sb.tempMessage = ""
		sb.tempMessageTime = time.Time{}
	}

	var style tcell.Style
	var text string
	switch {
	case tempActive:
		text = sb.tempMessage
		style = activeTheme.GetStyle("StatusBarMessage")
	case sb.isModified:
		text = sb.defaultDisplayText()
		style = activeTheme.GetStyle("StatusBarModified")
	default:
		text = sb.defaultDisplayText()
		style = activeTheme.GetStyle("StatusBar")
	}
	sb.mu.Unlock()

	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}

	text = runewidth.Truncate(text, width, "…")
	gr := uniseg.NewGraphemes(text)
	currentX := 0
	for gr.Next() {
		clusterWidth := gr.Width()
		if currentX+clusterWidth > width {
			break
		}
		runes := gr.Runes()
		if len(runes) > 0 {
			screen.SetContent(currentX, y, runes[0], runes[1:], style)
		}
		currentX += clusterWidth
	}
}
