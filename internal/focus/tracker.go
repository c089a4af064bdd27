// Package focus re-asserts foreground focus on the selected window.
package focus

import (
	"sync"
	"time"

	"github.com/frudas24/padrelay/internal/winman"
)

// refocusInterval rate-limits focus attempts so a fighting application
// does not cause a focus storm.
const refocusInterval = 400 * time.Millisecond

// Tracker nudges the selected window back to the foreground before
// injected input when focus lock is armed.
type Tracker struct {
	wm winman.Manager

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// New builds a tracker over the given window manager.
func New(wm winman.Manager) *Tracker {
	return &Tracker{wm: wm, now: time.Now}
}

// SetNowFunc overrides the clock for tests.
func (t *Tracker) SetNowFunc(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// MaybeRefocus brings handle to the foreground if focus lock is enabled,
// a window is selected, and it is not already focused. At most one
// attempt fires per refocusInterval.
func (t *Tracker) MaybeRefocus(lockEnabled bool, handle uint64) {
	if !lockEnabled || handle == 0 {
		return
	}
	t.mu.Lock()
	now := t.now()
	if now.Sub(t.last) < refocusInterval {
		t.mu.Unlock()
		return
	}
	t.last = now
	t.mu.Unlock()

	fg, err := t.wm.ForegroundWindow()
	if err == nil && fg.Handle == handle {
		return
	}
	t.wm.Focus(handle)
}
