//go:build windows

// Package winman queries and focuses top-level windows.
package winman

import (
	"syscall"

	"github.com/lxn/win"
)

// WinManager implements Manager using WinAPI calls.
type WinManager struct{}

// NewManager returns a Windows window manager.
func NewManager() (Manager, error) {
	return &WinManager{}, nil
}

// ForegroundWindow returns the currently focused window. A desktop with no
// foreground window yields a zero handle, not an error.
func (m *WinManager) ForegroundWindow() (Window, error) {
	hwnd := win.GetForegroundWindow()
	if hwnd == 0 {
		return Window{}, nil
	}
	var pid uint32
	win.GetWindowThreadProcessId(hwnd, &pid)
	return Window{Handle: uint64(hwnd), PID: pid, Title: windowTitle(hwnd)}, nil
}

// Focus restores the window and brings it to the foreground.
func (m *WinManager) Focus(handle uint64) bool {
	if handle == 0 {
		return false
	}
	hwnd := win.HWND(uintptr(handle))
	win.ShowWindow(hwnd, win.SW_RESTORE)
	return win.SetForegroundWindow(hwnd)
}

// windowTitle reads the window caption text.
func windowTitle(hwnd win.HWND) string {
	buf := make([]uint16, 512)
	n := win.GetWindowText(hwnd, &buf[0], int32(len(buf)))
	if n <= 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:n])
}
