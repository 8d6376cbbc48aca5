// internal/syntax/manager.go
package syntax

import (
	"context"
	"sync"
	"time"

	"github.com/plume-editor/plume/internal/logger"
)

const (
	// debounceDuration is how long after the last edit the background
	// catch-up waits before lexing ahead of the viewport.
	debounceDuration = 50 * time.Millisecond
	// catchUpBatch is how many lines one background pass lexes before
	// yielding the highlighter lock to readers.
	catchUpBatch = 256
)

// Manager drives background catch-up for a Highlighter. Visible lines are
// always lexed synchronously on read; the manager's only job is to finish
// the remainder of the dirty window off the input path so large files warm
// up without blocking keystrokes. Each edit restarts the debounce timer and
// cancels the pass in flight, so only the latest state is ever lexed.
type Manager struct {
	highlighter *Highlighter
	redraw      func()

	mu            sync.Mutex
	debounceTimer *time.Timer
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	shutdown      bool
}

// NewManager creates a background catch-up manager. redraw is invoked
// (from the manager's goroutine) whenever a pass finished work that may
// change what is on screen; it must be safe to call from any goroutine.
func NewManager(h *Highlighter, redraw func()) *Manager {
	return &Manager{highlighter: h, redraw: redraw}
}

// NotifyEdit schedules a catch-up pass after the debounce interval,
// superseding any pending or running pass.
func (m *Manager) NotifyEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shutdown {
		return
	}

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}
	m.debounceTimer = time.AfterFunc(debounceDuration, m.startPass)
}

func (m *Manager) startPass() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()

		worked := false
		for m.highlighter.Pending() {
			if ctx.Err() != nil {
				logger.DebugTagf("syntax", "background catch-up superseded")
				return
			}
			if done := m.highlighter.CatchUp(ctx, catchUpBatch); done {
				worked = true
				break
			}
			worked = true
		}
		if worked && m.redraw != nil {
			m.redraw()
		}
	}()
}

// Shutdown cancels pending work and waits for the running pass to exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.shutdown = true
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
		m.debounceTimer = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()
	m.wg.Wait()
}
