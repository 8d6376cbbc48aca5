// internal/event/event.go
package event

import (
	"github.com/google/uuid"

	"github.com/plume-editor/plume/internal/types"
)

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// Core editing events
	TypeBufferModified // buffer content changed (insert/delete)
	TypeBufferLoaded   // buffer successfully loaded
	TypeBufferSaved    // buffer successfully saved
	TypeCursorMoved    // cursor position changed

	// Snippet session lifecycle; the completion UI subscribes to these to
	// suppress itself when a session ends.
	TypeSnippetSessionStarted
	TypeSnippetSessionEnded

	TypeFoldsChanged // fold regions rebuilt or toggled

	// Application lifecycle
	TypeAppReady
	TypeAppQuit

	TypeThemeChanged
)

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data interface{}
}

// --- Event payloads ---

// BufferModifiedData carries the edit so downstream position holders can
// translate rather than rescan.
type BufferModifiedData struct {
	Edit types.EditInfo
}

// BufferLoadedData describes a completed load.
type BufferLoadedData struct {
	FilePath string
}

// BufferSavedData describes a completed save.
type BufferSavedData struct {
	FilePath string
}

// CursorMovedData carries the new cursor position.
type CursorMovedData struct {
	NewPosition types.Position
}

// SnippetSessionData identifies a snippet session transition.
type SnippetSessionData struct {
	SessionID uuid.UUID
}

// FoldsChangedData is dispatched after a fold rebuild or toggle.
type FoldsChangedData struct{}

// ThemeChangedData names the newly active theme.
type ThemeChangedData struct {
	Name string
}

// AppReadyData is dispatched once startup wiring is complete.
type AppReadyData struct{}

// AppQuitData is dispatched just before termination.
type AppQuitData struct{}
