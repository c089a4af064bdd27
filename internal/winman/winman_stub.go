//go:build !windows

// Package winman queries and focuses top-level windows.
package winman

import "errors"

// ErrUnsupported indicates window management is not available.
var ErrUnsupported = errors.New("winman is only supported on Windows")

// NoopManager is a placeholder manager for non-Windows builds.
type NoopManager struct{}

// NewManager returns a non-functional manager on non-Windows platforms.
func NewManager() (Manager, error) {
	return &NoopManager{}, ErrUnsupported
}

// ForegroundWindow returns ErrUnsupported.
func (n *NoopManager) ForegroundWindow() (Window, error) {
	return Window{}, ErrUnsupported
}

// Focus reports failure.
func (n *NoopManager) Focus(handle uint64) bool {
	_ = handle
	return false
}
