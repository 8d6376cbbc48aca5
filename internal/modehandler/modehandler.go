// internal/modehandler/modehandler.go
package modehandler

import (
	"github.com/gdamore/tcell/v2"

	"github.com/plume-editor/plume/internal/completion"
	"github.com/plume-editor/plume/internal/document"
	"github.com/plume-editor/plume/internal/event"
	"github.com/plume-editor/plume/internal/input"
	"github.com/plume-editor/plume/internal/logger"
	"github.com/plume-editor/plume/internal/statusbar"
	"github.com/plume-editor/plume/internal/types"
)

// ModeHandler routes decoded actions to the document. Precedence per key:
// the completion popup first (navigation and acceptance), then the document
// itself, whose snippet engine intercepts keys while a session is active.
type ModeHandler struct {
	doc            *document.Document
	inputProcessor *input.InputProcessor
	eventManager   *event.Manager
	statusBar      *statusbar.StatusBar
	completion     *completion.Controller
	quitSignal     chan<- struct{}

	pageSize         int
	forceQuitPending bool
	quitSignalled    bool
	onToggleMinimap  func()
}

// Config holds dependencies for the ModeHandler.
type Config struct {
	Doc             *document.Document
	InputProcessor  *input.InputProcessor
	EventManager    *event.Manager
	StatusBar       *statusbar.StatusBar
	Completion      *completion.Controller
	QuitSignal      chan<- struct{}
	OnToggleMinimap func()
}

// New creates a ModeHandler.
func New(cfg Config) *ModeHandler {
	if cfg.Doc == nil || cfg.InputProcessor == nil || cfg.EventManager == nil || cfg.StatusBar == nil || cfg.QuitSignal == nil {
		panic("modehandler.New: missing required dependencies in Config")
	}
	return &ModeHandler{
		doc:             cfg.Doc,
		inputProcessor:  cfg.InputProcessor,
		eventManager:    cfg.EventManager,
		statusBar:       cfg.StatusBar,
		completion:      cfg.Completion,
		quitSignal:      cfg.QuitSignal,
		onToggleMinimap: cfg.OnToggleMinimap,
		pageSize:        1,
	}
}

// signalQuit closes the quit channel once; stray keys between the signal
// and shutdown must not close it again.
func (mh *ModeHandler) signalQuit() {
	if !mh.quitSignalled {
		mh.quitSignalled = true
		close(mh.quitSignal)
	}
}

// SetPageSize updates the page-move distance after a resize.
func (mh *ModeHandler) SetPageSize(lines int) {
	if lines > 0 {
		mh.pageSize = lines
	}
}

// HandleKeyEvent processes one key event. Returns true when a redraw is
// needed.
func (mh *ModeHandler) HandleKeyEvent(ev *tcell.EventKey) bool {
	actionEvent := mh.inputProcessor.ProcessEvent(ev)

	if mh.completion != nil && mh.completion.Visible() {
		if handled := mh.handleActionCompletion(actionEvent); handled {
			return true
		}
	}
	return mh.handleAction(actionEvent)
}

// handleActionCompletion intercepts keys bound to popup navigation while
// the popup is open. Unintercepted actions fall through to normal handling.
func (mh *ModeHandler) handleActionCompletion(actionEvent input.ActionEvent) bool {
	switch actionEvent.Action {
	case input.ActionMoveDown:
		mh.completion.Next()
	case input.ActionMoveUp:
		mh.completion.Prev()
	case input.ActionInsertTab, input.ActionInsertNewLine:
		if !mh.completion.Accept() {
			return false
		}
	case input.ActionEscape:
		mh.completion.Dismiss()
	default:
		return false
	}
	return true
}

func (mh *ModeHandler) handleAction(actionEvent input.ActionEvent) bool {
	actionProcessed := true

	switch actionEvent.Action {
	// --- Quit / save ---
	case input.ActionQuit:
		if mh.doc.Buffer().IsModified() && !mh.forceQuitPending {
			mh.statusBar.SetTemporaryMessage("Unsaved changes! Press Ctrl+Q again or Ctrl+C to force quit.")
			mh.forceQuitPending = true
		} else {
			mh.signalQuit()
			actionProcessed = false
		}
	case input.ActionForceQuit:
		mh.signalQuit()
		actionProcessed = false

	case input.ActionSave:
		if err := mh.doc.Save(""); err != nil {
			mh.statusBar.SetTemporaryMessage("Save FAILED: %v", err)
		} else {
			path := mh.doc.Buffer().FilePath()
			if path == "" {
				path = "[No Name]"
			}
			mh.statusBar.SetTemporaryMessage("Saved %s", path)
		}

	// --- Movement ---
	case input.ActionMoveUp:
		mh.doc.MoveCursor(-1, 0)
	case input.ActionMoveDown:
		mh.doc.MoveCursor(1, 0)
	case input.ActionMoveLeft:
		mh.doc.MoveCursor(0, -1)
	case input.ActionMoveRight:
		mh.doc.MoveCursor(0, 1)
	case input.ActionMovePageUp:
		mh.doc.MoveCursor(-mh.pageSize, 0)
	case input.ActionMovePageDown:
		mh.doc.MoveCursor(mh.pageSize, 0)
	case input.ActionMoveHome:
		mh.doc.SetCursor(types.Position{Line: mh.doc.Cursor().Line, Col: 0})
	case input.ActionMoveEnd:
		cur := mh.doc.Cursor()
		if text, err := mh.doc.Buffer().LineText(cur.Line); err == nil {
			mh.doc.SetCursor(types.Position{Line: cur.Line, Col: len([]rune(text))})
		}

	// --- Text modification ---
	case input.ActionInsertRune:
		mh.doc.InsertRune(actionEvent.Rune)
	case input.ActionInsertNewLine:
		mh.doc.InsertNewline()
	case input.ActionInsertTab:
		mh.doc.InsertTab()
	case input.ActionDeleteCharBackward:
		mh.doc.Backspace()
	case input.ActionDeleteCharForward:
		mh.doc.DeleteForward()

	// --- Snippets / completion ---
	case input.ActionExpandSnippet:
		if !mh.doc.ExpandSnippet() {
			mh.statusBar.SetTemporaryMessage("No snippet for word before cursor")
		}
	case input.ActionEscape:
		if !mh.doc.Escape() {
			mh.statusBar.ResetTemporaryMessage()
		}
	case input.ActionTriggerCompletion:
		if mh.completion != nil && !mh.completion.Trigger() {
			mh.statusBar.SetTemporaryMessage("No completions")
		}

	// --- Folding / clipboard / view ---
	case input.ActionToggleFold:
		if !mh.doc.ToggleFold() {
			mh.statusBar.SetTemporaryMessage("No fold region at cursor")
		}
	case input.ActionYankLine:
		mh.doc.YankLine()
		mh.statusBar.SetTemporaryMessage("Line yanked")
	case input.ActionPaste:
		mh.doc.Paste()
	case input.ActionToggleMinimap:
		if mh.onToggleMinimap != nil {
			mh.onToggleMinimap()
		}

	case input.ActionUnknown:
		actionProcessed = false
	default:
		actionProcessed = false
	}

	if actionProcessed && actionEvent.Action != input.ActionQuit {
		mh.forceQuitPending = false
	}
	if actionEvent.Action == input.ActionQuit {
		// The pending warning itself needs a redraw.
		return true
	}
	if !actionProcessed {
		logger.DebugTagf("input", "unhandled action %v", actionEvent.Action)
	}
	return actionProcessed
}
