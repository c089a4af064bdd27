// Package pad presents a virtual game controller to the OS.
package pad

// Backend drives a virtual two-stick/trigger/button controller.
// Implementations silently no-op when not ready, so a missing device
// degrades to "this action had no effect" rather than an error path.
type Backend interface {
	Ready() bool
	Err() string
	SetLeftStick(x, y float64)
	SetRightStick(x, y float64)
	SetTrigger(which string, value float64)
	SetButton(name string, pressed bool)
	Neutralize()
	Close()
}

// inert is a Backend recording why the device is unavailable.
type inert struct {
	err string
}

// Disabled returns a backend representing a deliberately disabled device.
func Disabled() Backend {
	return &inert{err: "disabled"}
}

// Ready reports false.
func (i *inert) Ready() bool { return false }

// Err returns the unavailability reason.
func (i *inert) Err() string { return i.err }

// SetLeftStick does nothing.
func (i *inert) SetLeftStick(x, y float64) { _, _ = x, y }

// SetRightStick does nothing.
func (i *inert) SetRightStick(x, y float64) { _, _ = x, y }

// SetTrigger does nothing.
func (i *inert) SetTrigger(which string, value float64) { _, _ = which, value }

// SetButton does nothing.
func (i *inert) SetButton(name string, pressed bool) { _, _ = name, pressed }

// Neutralize does nothing.
func (i *inert) Neutralize() {}

// Close does nothing.
func (i *inert) Close() {}
