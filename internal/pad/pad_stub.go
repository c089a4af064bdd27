//go:build !windows

// Package pad presents a virtual game controller to the OS.
package pad

// New returns a degraded backend on non-Windows platforms.
func New(enabled bool, sens float64) Backend {
	_ = sens
	if !enabled {
		return Disabled()
	}
	return &inert{err: "virtual gamepad is only supported on Windows"}
}
