// internal/input/keymap.go
package input

import (
	"github.com/gdamore/tcell/v2"
)

// Keymap maps special keys (Enter, arrows, Ctrl chords) to actions.
type Keymap map[tcell.Key]Action

// InputProcessor translates tcell key events into ActionEvents. It is
// mode-agnostic: the mode handler decides what an action means while a
// snippet session or completion popup is active.
type InputProcessor struct {
	keymap Keymap
}

// NewInputProcessor creates a processor with the default bindings.
func NewInputProcessor() *InputProcessor {
	p := &InputProcessor{keymap: make(Keymap)}
	p.loadDefaultBindings()
	return p
}

func (p *InputProcessor) loadDefaultBindings() {
	p.keymap[tcell.KeyUp] = ActionMoveUp
	p.keymap[tcell.KeyDown] = ActionMoveDown
	p.keymap[tcell.KeyLeft] = ActionMoveLeft
	p.keymap[tcell.KeyRight] = ActionMoveRight
	p.keymap[tcell.KeyPgUp] = ActionMovePageUp
	p.keymap[tcell.KeyPgDn] = ActionMovePageDown
	p.keymap[tcell.KeyHome] = ActionMoveHome
	p.keymap[tcell.KeyEnd] = ActionMoveEnd

	p.keymap[tcell.KeyEnter] = ActionInsertNewLine
	p.keymap[tcell.KeyTab] = ActionInsertTab
	p.keymap[tcell.KeyBackspace] = ActionDeleteCharBackward
	p.keymap[tcell.KeyBackspace2] = ActionDeleteCharBackward
	p.keymap[tcell.KeyDelete] = ActionDeleteCharForward
	p.keymap[tcell.KeyEscape] = ActionEscape

	p.keymap[tcell.KeyCtrlS] = ActionSave
	p.keymap[tcell.KeyCtrlQ] = ActionQuit
	p.keymap[tcell.KeyCtrlC] = ActionForceQuit
	p.keymap[tcell.KeyCtrlE] = ActionExpandSnippet
	p.keymap[tcell.KeyCtrlSpace] = ActionTriggerCompletion
	p.keymap[tcell.KeyCtrlF] = ActionToggleFold
	p.keymap[tcell.KeyCtrlY] = ActionYankLine
	p.keymap[tcell.KeyCtrlP] = ActionPaste
	p.keymap[tcell.KeyCtrlU] = ActionToggleMinimap
}

// ProcessEvent takes a tcell key event and returns the matching ActionEvent.
func (p *InputProcessor) ProcessEvent(ev *tcell.EventKey) ActionEvent {
	key := ev.Key()
	mod := ev.Modifiers()

	if action, ok := p.keymap[key]; ok {
		return ActionEvent{Action: action}
	}

	if key == tcell.KeyRune && (mod == tcell.ModNone || mod == tcell.ModShift) {
		return ActionEvent{Action: ActionInsertRune, Rune: ev.Rune()}
	}

	return ActionEvent{Action: ActionUnknown}
}
