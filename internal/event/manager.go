// internal/event/manager.go
package event

import (
	"sync"

	"github.com/plume-editor/plume/internal/logger"
)

// Handler is the subscriber signature. Returning true marks the event as
// consumed; dispatch currently ignores the value but keeps the shape for
// future propagation control.
type Handler func(e Event) bool

// Manager handles event subscriptions and synchronous dispatching. Dispatch
// runs handlers in subscription order on the caller's goroutine, so
// components observe buffer edits exactly in the order they occurred.
type Manager struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewManager creates a new event manager.
func NewManager() *Manager {
	return &Manager{handlers: make(map[Type][]Handler)}
}

// Subscribe adds a handler for an event type.
func (m *Manager) Subscribe(eventType Type, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Dispatch sends an event to all handlers registered for its type.
func (m *Manager) Dispatch(eventType Type, data interface{}) {
	event := Event{Type: eventType, Data: data}

	m.mu.RLock()
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	logger.DebugTagf("event", "dispatching %v to %d handler(s)", eventType, len(handlers))

	// Copy so a handler subscribing during dispatch cannot disturb iteration.
	handlersCopy := make([]Handler, len(handlers))
	copy(handlersCopy, handlers)
	for _, handler := range handlersCopy {
		handler(event)
	}
}
