// internal/clipboard/clipboard.go
package clipboard

import (
	"github.com/atotto/clipboard"

	"github.com/plume-editor/plume/internal/logger"
)

// Manager holds yanked text. With useSystem it round-trips through the OS
// clipboard; otherwise an internal register is used (and also kept as a
// fallback when the system clipboard is unavailable, e.g. no display).
type Manager struct {
	useSystem bool
	register  string
}

// NewManager creates a clipboard manager.
func NewManager(useSystem bool) *Manager {
	if useSystem && clipboard.Unsupported {
		logger.Warnf("system clipboard unavailable on this platform, using internal register")
		useSystem = false
	}
	return &Manager{useSystem: useSystem}
}

// Write stores text.
func (m *Manager) Write(text string) {
	m.register = text
	if !m.useSystem {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		logger.Warnf("system clipboard write failed: %v", err)
	}
}

// Read returns the stored text.
func (m *Manager) Read() string {
	if m.useSystem {
		text, err := clipboard.ReadAll()
		if err == nil {
			return text
		}
		logger.Warnf("system clipboard read failed: %v", err)
	}
	return m.register
}
