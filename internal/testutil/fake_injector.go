// Package testutil provides recording fakes for device backends.
package testutil

import "sync"

// Call records one injector invocation.
type Call struct {
	Name string
	X    int
	Y    int
	Key  string
	Down bool
	Text string
}

// FakeInjector records injected input for assertions.
type FakeInjector struct {
	mu    sync.Mutex
	Calls []Call
}

// MoveRel records a relative pointer move.
func (f *FakeInjector) MoveRel(dx, dy int) error {
	f.append(Call{Name: "move", X: dx, Y: dy})
	return nil
}

// Wheel records a scroll.
func (f *FakeInjector) Wheel(delta int) error {
	f.append(Call{Name: "wheel", Y: delta})
	return nil
}

// Button records a mouse button transition.
func (f *FakeInjector) Button(name string, down bool) error {
	f.append(Call{Name: "button", Key: name, Down: down})
	return nil
}

// Key records a key transition.
func (f *FakeInjector) Key(name string, down bool) error {
	f.append(Call{Name: "key", Key: name, Down: down})
	return nil
}

// TypeText records typed text.
func (f *FakeInjector) TypeText(text string) error {
	f.append(Call{Name: "type", Text: text})
	return nil
}

// Recorded returns a copy of the recorded calls.
func (f *FakeInjector) Recorded() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.Calls))
	copy(out, f.Calls)
	return out
}

// Reset clears the recorded calls.
func (f *FakeInjector) Reset() {
	f.mu.Lock()
	f.Calls = nil
	f.mu.Unlock()
}

// append stores one call under the lock.
func (f *FakeInjector) append(c Call) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	f.mu.Unlock()
}
