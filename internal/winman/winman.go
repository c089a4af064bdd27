// Package winman queries and focuses top-level windows.
package winman

// Window describes a top-level window.
type Window struct {
	Handle uint64
	PID    uint32
	Title  string
}

// Manager exposes the window operations used by the focus tracker and the
// RPC handlers.
type Manager interface {
	ForegroundWindow() (Window, error)
	Focus(handle uint64) bool
}
