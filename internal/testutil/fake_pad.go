package testutil

import "sync"

// PadCall records one gamepad backend invocation.
type PadCall struct {
	Name  string
	X     float64
	Y     float64
	Which string
	Value float64
	Down  bool
}

// FakePad records virtual-controller calls for assertions.
type FakePad struct {
	ReadyVal bool
	ErrVal   string

	mu    sync.Mutex
	Calls []PadCall
}

// Ready reports the configured readiness.
func (f *FakePad) Ready() bool { return f.ReadyVal }

// Err returns the configured unavailability reason.
func (f *FakePad) Err() string { return f.ErrVal }

// SetLeftStick records a left-stick update.
func (f *FakePad) SetLeftStick(x, y float64) {
	f.append(PadCall{Name: "ls", X: x, Y: y})
}

// SetRightStick records a right-stick update.
func (f *FakePad) SetRightStick(x, y float64) {
	f.append(PadCall{Name: "rs", X: x, Y: y})
}

// SetTrigger records a trigger update.
func (f *FakePad) SetTrigger(which string, value float64) {
	f.append(PadCall{Name: "trigger", Which: which, Value: value})
}

// SetButton records a button transition.
func (f *FakePad) SetButton(name string, pressed bool) {
	f.append(PadCall{Name: "button", Which: name, Down: pressed})
}

// Neutralize records a re-center.
func (f *FakePad) Neutralize() {
	f.append(PadCall{Name: "neutralize"})
}

// Close records a detach.
func (f *FakePad) Close() {
	f.append(PadCall{Name: "close"})
}

// Recorded returns a copy of the recorded calls.
func (f *FakePad) Recorded() []PadCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]PadCall, len(f.Calls))
	copy(out, f.Calls)
	return out
}

// append stores one call under the lock.
func (f *FakePad) append(c PadCall) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	f.mu.Unlock()
}
