// Package wininput injects keyboard and mouse input on Windows.
package wininput

// Injector defines the device operations used by the input router and the
// KBM mapper. All operations are best-effort; callers may ignore errors.
type Injector interface {
	MoveRel(dx, dy int) error
	Wheel(delta int) error
	Button(name string, down bool) error
	Key(name string, down bool) error
	TypeText(text string) error
}
