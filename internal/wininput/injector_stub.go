//go:build !windows

// Package wininput injects keyboard and mouse input on Windows.
package wininput

import "errors"

// ErrUnsupported indicates WinAPI input injection is not available.
var ErrUnsupported = errors.New("wininput is only supported on Windows")

// NoopInjector is a placeholder injector for non-Windows builds.
type NoopInjector struct{}

// NewInjector returns a non-functional injector on non-Windows platforms.
func NewInjector() (Injector, error) {
	return &NoopInjector{}, ErrUnsupported
}

// MoveRel returns ErrUnsupported.
func (n *NoopInjector) MoveRel(dx, dy int) error {
	_ = dx
	_ = dy
	return ErrUnsupported
}

// Wheel returns ErrUnsupported.
func (n *NoopInjector) Wheel(delta int) error {
	_ = delta
	return ErrUnsupported
}

// Button returns ErrUnsupported.
func (n *NoopInjector) Button(name string, down bool) error {
	_ = name
	_ = down
	return ErrUnsupported
}

// Key returns ErrUnsupported.
func (n *NoopInjector) Key(name string, down bool) error {
	_ = name
	_ = down
	return ErrUnsupported
}

// TypeText returns ErrUnsupported.
func (n *NoopInjector) TypeText(text string) error {
	_ = text
	return ErrUnsupported
}
