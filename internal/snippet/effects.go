// internal/snippet/effects.go
package snippet

import "github.com/plume-editor/plume/internal/types"

// RefreshKind selects the highlight style for a placeholder range.
type RefreshKind uint8

const (
	// RefreshActive marks the placeholder currently holding input focus.
	RefreshActive RefreshKind = iota
	// RefreshPending marks unconfirmed placeholders awaiting their turn.
	RefreshPending
)

// Refresh asks the presentation layer to restyle one range.
type Refresh struct {
	Range types.Range
	Kind  RefreshKind
}

// Effects is what a state transition asks of the caller. The engine never
// touches the screen or moves the cursor itself; it mutates the buffer and
// returns the side effects for the presentation layer to apply.
type Effects struct {
	// Handled reports whether the engine consumed the input. When false the
	// caller applies its default editing behavior.
	Handled bool
	// Cursor, when non-nil, is where the caret belongs after the transition.
	Cursor *types.Position
	// Refresh lists placeholder ranges whose styling must be repainted.
	Refresh []Refresh

	SessionStarted bool
	SessionEnded   bool
}

func handled() Effects { return Effects{Handled: true} }

func unhandled() Effects { return Effects{} }

func (fx *Effects) cursorAt(p types.Position) {
	fx.Cursor = &p
}
