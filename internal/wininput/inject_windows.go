//go:build windows

// Package wininput injects keyboard and mouse input on Windows.
package wininput

import (
	"fmt"
	"syscall"
	"unicode/utf16"

	"github.com/lxn/win"
)

// wheelDelta is the WinAPI wheel unit per scroll detent.
const wheelDelta = 120

// WinInjector injects mouse and keyboard input using SendInput.
type WinInjector struct{}

// NewInjector returns a Windows input injector.
func NewInjector() (Injector, error) {
	return &WinInjector{}, nil
}

// MoveRel moves the cursor by a relative delta.
func (w *WinInjector) MoveRel(dx, dy int) error {
	return sendMouseInput(win.MOUSEEVENTF_MOVE, int32(dx), int32(dy), 0)
}

// Wheel scrolls vertically by the given number of detents.
func (w *WinInjector) Wheel(delta int) error {
	return sendMouseInput(win.MOUSEEVENTF_WHEEL, 0, 0, uint32(int32(delta*wheelDelta)))
}

// Button presses or releases a mouse button by name.
func (w *WinInjector) Button(name string, down bool) error {
	var flags uint32
	switch name {
	case "left":
		flags = win.MOUSEEVENTF_LEFTDOWN
		if !down {
			flags = win.MOUSEEVENTF_LEFTUP
		}
	case "right":
		flags = win.MOUSEEVENTF_RIGHTDOWN
		if !down {
			flags = win.MOUSEEVENTF_RIGHTUP
		}
	case "middle":
		flags = win.MOUSEEVENTF_MIDDLEDOWN
		if !down {
			flags = win.MOUSEEVENTF_MIDDLEUP
		}
	default:
		return fmt.Errorf("unknown mouse button %q", name)
	}
	return sendMouseInput(flags, 0, 0, 0)
}

// Key presses or releases a named key. Single runes outside the virtual-key
// table are sent as Unicode scancodes.
func (w *WinInjector) Key(name string, down bool) error {
	var flags uint32
	if !down {
		flags = win.KEYEVENTF_KEYUP
	}
	if vk, ok := virtualKey(name); ok {
		return sendKeyboardInput(win.KEYBDINPUT{WVk: vk, DwFlags: flags})
	}
	runes := []rune(name)
	if len(runes) != 1 {
		return fmt.Errorf("unknown key %q", name)
	}
	for _, code := range utf16.Encode(runes) {
		if err := sendKeyboardInput(win.KEYBDINPUT{WScan: code, DwFlags: win.KEYEVENTF_UNICODE | flags}); err != nil {
			return err
		}
	}
	return nil
}

// TypeText types Unicode text into the focused window.
func (w *WinInjector) TypeText(text string) error {
	if text == "" {
		return nil
	}
	for _, code := range utf16.Encode([]rune(text)) {
		if err := sendKeyboardInput(win.KEYBDINPUT{WScan: code, DwFlags: win.KEYEVENTF_UNICODE}); err != nil {
			return err
		}
		if err := sendKeyboardInput(win.KEYBDINPUT{WScan: code, DwFlags: win.KEYEVENTF_UNICODE | win.KEYEVENTF_KEYUP}); err != nil {
			return err
		}
	}
	return nil
}

// virtualKey resolves a key name to a virtual-key code.
func virtualKey(name string) (uint16, bool) {
	switch name {
	case "enter":
		return win.VK_RETURN, true
	case "backspace":
		return win.VK_BACK, true
	case "tab":
		return win.VK_TAB, true
	case "esc":
		return win.VK_ESCAPE, true
	case "space":
		return win.VK_SPACE, true
	case "up":
		return win.VK_UP, true
	case "down":
		return win.VK_DOWN, true
	case "left":
		return win.VK_LEFT, true
	case "right":
		return win.VK_RIGHT, true
	case "shift":
		return win.VK_SHIFT, true
	case "ctrl":
		return win.VK_CONTROL, true
	case "alt":
		return win.VK_MENU, true
	case "cmd":
		return win.VK_LWIN, true
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return uint16(c - 'a' + 'A'), true
		case c >= 'A' && c <= 'Z':
			return uint16(c), true
		case c >= '0' && c <= '9':
			return uint16(c), true
		}
	}
	return 0, false
}

// sendMouseInput dispatches a single mouse input event.
func sendMouseInput(flags uint32, dx, dy int32, data uint32) error {
	input := win.INPUT{
		Type: win.INPUT_MOUSE,
		Mi: win.MOUSEINPUT{
			Dx:        dx,
			Dy:        dy,
			MouseData: data,
			DwFlags:   flags,
		},
	}
	if win.SendInput(1, &input, int32(win.SizeofINPUT)) != 1 {
		return fmt.Errorf("SendInput failed: %w", syscall.GetLastError())
	}
	return nil
}

// sendKeyboardInput dispatches a single keyboard input event.
func sendKeyboardInput(key win.KEYBDINPUT) error {
	input := win.INPUT{
		Type: win.INPUT_KEYBOARD,
		Ki:   key,
	}
	if win.SendInput(1, &input, int32(win.SizeofINPUT)) != 1 {
		return fmt.Errorf("SendInput failed: %w", syscall.GetLastError())
	}
	return nil
}
