// internal/input/action.go
package input

// Action represents a command or operation to be performed by the editor.
type Action int

const (
	// --- Meta ---
	ActionUnknown Action = iota
	ActionQuit
	ActionForceQuit // quit without checking modified status
	ActionSave

	// --- Cursor movement ---
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionMovePageUp
	ActionMovePageDown
	ActionMoveHome
	ActionMoveEnd

	// --- Text manipulation ---
	ActionInsertRune // carries the rune
	ActionInsertNewLine
	ActionInsertTab
	ActionDeleteCharBackward
	ActionDeleteCharForward
	ActionYankLine
	ActionPaste

	// --- Snippets / completion ---
	ActionExpandSnippet // expand the trigger word before the caret
	ActionEscape        // abandon snippet session / dismiss completion
	ActionTriggerCompletion

	// --- Folding / view ---
	ActionToggleFold
	ActionToggleMinimap
)

// ActionEvent is a decoded input event. Rune is set for ActionInsertRune.
type ActionEvent struct {
	Action Action
	Rune   rune
}
