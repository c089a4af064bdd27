package testutil

import (
	"sync"

	"github.com/frudas24/padrelay/internal/winman"
)

// FakeWindowManager serves a scripted foreground window and records focus
// attempts.
type FakeWindowManager struct {
	mu          sync.Mutex
	Foreground  winman.Window
	FocusResult bool
	FocusCalls  []uint64
}

// ForegroundWindow returns the scripted foreground window.
func (f *FakeWindowManager) ForegroundWindow() (winman.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Foreground, nil
}

// Focus records the attempt and returns the scripted result.
func (f *FakeWindowManager) Focus(handle uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FocusCalls = append(f.FocusCalls, handle)
	return f.FocusResult
}

// SetForeground swaps the scripted foreground window.
func (f *FakeWindowManager) SetForeground(w winman.Window) {
	f.mu.Lock()
	f.Foreground = w
	f.mu.Unlock()
}

// FocusAttempts returns a copy of the recorded focus calls.
func (f *FakeWindowManager) FocusAttempts() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, len(f.FocusCalls))
	copy(out, f.FocusCalls)
	return out
}
