// internal/app/app.go
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/plume-editor/plume/internal/buffer"
	"github.com/plume-editor/plume/internal/clipboard"
	"github.com/plume-editor/plume/internal/completion"
	"github.com/plume-editor/plume/internal/config"
	"github.com/plume-editor/plume/internal/document"
	"github.com/plume-editor/plume/internal/event"
	"github.com/plume-editor/plume/internal/input"
	"github.com/plume-editor/plume/internal/logger"
	"github.com/plume-editor/plume/internal/modehandler"
	"github.com/plume-editor/plume/internal/snippet"
	"github.com/plume-editor/plume/internal/statusbar"
	"github.com/plume-editor/plume/internal/theme"
	"github.com/plume-editor/plume/internal/tui"
)

// App wires the editor's components together and runs the main loops: one
// goroutine polling terminal events, the main goroutine drawing frames. All
// document mutation happens on the event goroutine, which is what keeps the
// per-document state serialized.
type App struct {
	cfg          *config.Config
	tuiManager   *tui.TUI
	doc          *document.Document
	statusBar    *statusbar.StatusBar
	eventManager *event.Manager
	modeHandler  *modehandler.ModeHandler
	completion   *completion.Controller
	themeWatcher *theme.Watcher
	view         *tui.View

	quit          chan struct{}
	redrawRequest chan struct{}
}

// NewApp creates and initializes the application.
func NewApp(filePath string, cfg *config.Config) (*App, error) {
	tuiManager, err := tui.New()
	if err != nil {
		return nil, fmt.Errorf("TUI initialization failed: %w", err)
	}

	buf := buffer.NewSliceBuffer()
	if err := buf.Load(filePath); err != nil {
		tuiManager.Close()
		return nil, fmt.Errorf("loading %s: %w", filePath, err)
	}

	eventManager := event.NewManager()
	clip := clipboard.NewManager(cfg.Editor.SystemClipboard)

	registry := snippet.NewRegistry()
	if path := cfg.SnippetFilePath(); path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			if loadErr := registry.LoadFile(path); loadErr != nil {
				logger.Warnf("user snippets ignored: %v", loadErr)
			}
		}
	}

	a := &App{
		cfg:           cfg,
		tuiManager:    tuiManager,
		statusBar:     statusbar.New(statusbar.Config{MessageTimeout: config.MessageTimeout}),
		eventManager:  eventManager,
		quit:          make(chan struct{}),
		redrawRequest: make(chan struct{}, 1),
	}

	a.doc, err = document.New(buf, cfg, eventManager, registry, clip, a.requestRedraw)
	if err != nil {
		tuiManager.Close()
		return nil, err
	}
	a.completion = completion.NewController(a.doc, eventManager)

	a.view = &tui.View{
		Doc:         a.doc,
		Completion:  a.completion,
		TabWidth:    cfg.Editor.TabWidth,
		ShowMinimap: cfg.Editor.Minimap,
	}

	a.modeHandler = modehandler.New(modehandler.Config{
		Doc:            a.doc,
		InputProcessor: input.NewInputProcessor(),
		EventManager:   eventManager,
		StatusBar:      a.statusBar,
		Completion:     a.completion,
		QuitSignal:     a.quit,
		OnToggleMinimap: func() {
			a.view.ShowMinimap = !a.view.ShowMinimap
		},
	})

	a.statusBar.SetFileInfo(buf.FilePath(), buf.IsModified())
	if rules := a.doc.Rules(); rules != nil {
		a.statusBar.SetLanguage(rules.Name)
	}

	a.startThemeWatcher()
	a.subscribeEvents()
	eventManager.Dispatch(event.TypeBufferLoaded, event.BufferLoadedData{FilePath: buf.FilePath()})
	return a, nil
}

// startThemeWatcher loads the user theme file when present and watches it
// for live reloads. Failures leave the built-in theme active.
func (a *App) startThemeWatcher() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return
	}
	path := filepath.Join(configDir, config.ConfigDirName, config.DefaultThemeFileName)
	if _, err := os.Stat(path); err == nil {
		if loaded, loadErr := theme.LoadThemeFromFile(path); loadErr == nil {
			theme.SetCurrentTheme(loaded)
		} else {
			logger.Warnf("theme file ignored: %v", loadErr)
		}
	}
	watcher, err := theme.NewWatcher(path, a.eventManager)
	if err != nil {
		logger.Warnf("theme live-reload disabled: %v", err)
		return
	}
	a.themeWatcher = watcher
}

func (a *App) subscribeEvents() {
	a.eventManager.Subscribe(event.TypeCursorMoved, func(e event.Event) bool {
		if data, ok := e.Data.(event.CursorMovedData); ok {
			a.statusBar.SetCursorInfo(data.NewPosition)
		}
		return false
	})
	a.eventManager.Subscribe(event.TypeBufferModified, func(e event.Event) bool {
		a.statusBar.SetFileInfo(a.doc.Buffer().FilePath(), a.doc.Buffer().IsModified())
		return false
	})
	a.eventManager.Subscribe(event.TypeBufferSaved, func(e event.Event) bool {
		a.statusBar.SetFileInfo(a.doc.Buffer().FilePath(), a.doc.Buffer().IsModified())
		return false
	})
	a.eventManager.Subscribe(event.TypeSnippetSessionStarted, func(e event.Event) bool {
		a.statusBar.SetSnippetActive(true)
		return false
	})
	a.eventManager.Subscribe(event.TypeSnippetSessionEnded, func(e event.Event) bool {
		a.statusBar.SetSnippetActive(false)
		return false
	})
	a.eventManager.Subscribe(event.TypeFoldsChanged, func(e event.Event) bool {
		a.requestRedraw()
		return false
	})
	// The watcher dispatches from its own goroutine; the redraw channel is
	// the crossing point back to the draw loop.
	a.eventManager.Subscribe(event.TypeThemeChanged, func(e event.Event) bool {
		a.requestRedraw()
		return false
	})
}

// Run starts the event and drawing loops, blocking until quit.
func (a *App) Run() error {
	defer a.tuiManager.Close()
	defer a.doc.Close()
	if a.themeWatcher != nil {
		defer a.themeWatcher.Close()
	}

	go a.eventLoop()

	a.eventManager.Dispatch(event.TypeAppReady, event.AppReadyData{})
	a.statusBar.SetTemporaryMessage("%s -- Ctrl+S save | Ctrl+E snippet | Ctrl+Q quit", config.AppName)
	a.requestRedraw()

	for {
		select {
		case <-a.quit:
			a.eventManager.Dispatch(event.TypeAppQuit, event.AppQuitData{})
			if a.doc.Buffer().IsModified() {
				logger.Warnf("exited with unsaved changes")
			}
			return nil
		case <-a.redrawRequest:
			a.drawEditor()
		}
	}
}

// eventLoop polls terminal events and delegates keys to the mode handler.
func (a *App) eventLoop() {
	for {
		ev := a.tuiManager.PollEvent()
		if ev == nil {
			return
		}

		needsRedraw := false
		switch eventData := ev.(type) {
		case *tcell.EventResize:
			a.tuiManager.GetScreen().Sync()
			needsRedraw = true
		case *tcell.EventKey:
			needsRedraw = a.modeHandler.HandleKeyEvent(eventData)
		}

		if needsRedraw {
			a.requestRedraw()
		}
	}
}

// drawEditor renders one frame.
func (a *App) drawEditor() {
	width, height := a.tuiManager.Size()
	viewHeight := height - a.cfg.Editor.StatusBarHeight
	a.modeHandler.SetPageSize(viewHeight)
	a.scrollToCursor(width, viewHeight)

	screen := a.tuiManager.GetScreen()
	activeTheme := theme.GetCurrentTheme()

	a.tuiManager.Clear()
	tui.DrawBuffer(a.tuiManager, a.view, activeTheme)
	a.statusBar.Draw(screen, width, height)
	tui.DrawCursor(a.tuiManager, a.view)
	a.tuiManager.Show()
}

// scrollToCursor keeps the caret inside the viewport, honoring scroll-off.
// Vertical positions are in fold-elided rows; a caret on a hidden line
// tracks the nearest visible row above it.
func (a *App) scrollToCursor(width, viewHeight int) {
	if viewHeight <= 0 {
		return
	}
	rows := a.doc.Folds().VisibleLines()
	cursor := a.doc.Cursor()

	cursorRow := 0
	for i, line := range rows {
		if line > cursor.Line {
			break
		}
		cursorRow = i
	}

	scrollOff := a.cfg.Editor.ScrollOff
	if scrollOff*2 >= viewHeight {
		scrollOff = 0
	}
	if cursorRow < a.view.TopRow+scrollOff {
		a.view.TopRow = cursorRow - scrollOff
	}
	if cursorRow >= a.view.TopRow+viewHeight-scrollOff {
		a.view.TopRow = cursorRow - viewHeight + 1 + scrollOff
	}
	if a.view.TopRow > len(rows)-1 {
		a.view.TopRow = len(rows) - 1
	}
	if a.view.TopRow < 0 {
		a.view.TopRow = 0
	}

	lineStr, err := a.doc.Buffer().LineText(cursor.Line)
	if err != nil {
		return
	}
	visualCol := tui.VisualColumn(lineStr, cursor.Col)
	// Approximate the text area; the gutter is narrow and exactness only
	// shifts the scroll threshold by a column or two.
	textWidth := width - 8
	if a.view.ShowMinimap {
		textWidth -= config.MinimapWidth + 1
	}
	if textWidth < 10 {
		textWidth = 10
	}
	if visualCol < a.view.LeftCol {
		a.view.LeftCol = visualCol
	}
	if visualCol >= a.view.LeftCol+textWidth {
		a.view.LeftCol = visualCol - textWidth + 1
	}
}

// requestRedraw queues a redraw without blocking; callers may be on any
// goroutine.
func (a *App) requestRedraw() {
	select {
	case a.redrawRequest <- struct{}{}:
	default:
	}
}
