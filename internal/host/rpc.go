package host

import (
	"github.com/frudas24/padrelay/internal/relay"
	"github.com/frudas24/padrelay/internal/winman"
)

// dispatch executes one RPC by name. It returns the post-mutation status
// snapshot and an error tag, empty on success.
func (d *DeviceState) dispatch(method string, p *relay.Params) (relay.Status, string) {
	switch method {
	case "select_foreground_window":
		return d.selectForegroundWindow()
	case "get_selected_window":
		return d.Snapshot(), ""
	case "set_focus_lock":
		return d.setFocusLock(boolParam(p))
	case "set_gamepad_enabled":
		return d.SetGamepadEnabled(boolParam(p))
	case "set_input_mode":
		return d.setInputMode(modeParam(p))
	case "set_kbm_camera_drag":
		return d.setKbmCameraDrag(boolParam(p))
	case "gamepad_status":
		return d.Snapshot(), ""
	case "pad_reset":
		return d.padReset()
	default:
		return relay.Status{}, "unknown_method"
	}
}

// selectForegroundWindow records the current foreground window as the
// focus-lock target. Selecting a real window implies gaming mode, so it
// also arms focus lock and enables the gamepad.
func (d *DeviceState) selectForegroundWindow() (relay.Status, string) {
	fg, err := d.wm.ForegroundWindow()
	if err != nil {
		fg = winman.Window{}
	}
	d.mu.Lock()
	d.selected = relay.Window{Handle: fg.Handle, PID: fg.PID, Title: fg.Title}
	if fg.Handle != 0 {
		d.focusLock = true
	}
	d.mu.Unlock()
	if fg.Handle != 0 {
		return d.SetGamepadEnabled(true)
	}
	return d.Snapshot(), ""
}

// setFocusLock arms or disarms focus lock. Arming with a window selected
// also enables the gamepad.
func (d *DeviceState) setFocusLock(enabled bool) (relay.Status, string) {
	d.mu.Lock()
	d.focusLock = enabled
	selected := d.selected.Handle
	d.mu.Unlock()
	if enabled && selected != 0 {
		return d.SetGamepadEnabled(true)
	}
	return d.Snapshot(), ""
}

// SetGamepadEnabled toggles the virtual controller. Disabling neutralizes
// the device in place so the OS keeps seeing a neutral controller; enabling
// recreates it when the mode allows.
func (d *DeviceState) SetGamepadEnabled(enabled bool) (relay.Status, string) {
	d.mu.Lock()
	if enabled == d.gamepadEnabled {
		d.mu.Unlock()
		return d.Snapshot(), ""
	}
	d.gamepadEnabled = enabled
	if enabled && d.inputMode == ModeGamepad {
		d.replacePad(true)
	} else if !enabled {
		d.pad.Neutralize()
	}
	d.mu.Unlock()
	if !enabled {
		d.mapper.ReleaseAll()
	}
	return d.Snapshot(), ""
}

// setInputMode switches between gamepad passthrough and KBM translation.
// Any actual switch recreates the virtual controller and releases all
// held input on both sides.
func (d *DeviceState) setInputMode(mode int) (relay.Status, string) {
	if mode != ModeGamepad {
		mode = ModeKBM
	}
	d.mu.Lock()
	if mode == d.inputMode {
		d.mu.Unlock()
		return d.Snapshot(), ""
	}
	d.inputMode = mode
	d.replacePad(d.gamepadEnabled && mode == ModeGamepad)
	d.mu.Unlock()
	d.mapper.ReleaseAll()
	return d.Snapshot(), ""
}

// setKbmCameraDrag toggles whether the camera touch zone holds the right
// mouse button in KBM mode.
func (d *DeviceState) setKbmCameraDrag(enabled bool) (relay.Status, string) {
	d.mu.Lock()
	d.kbmCameraDrag = enabled
	d.mu.Unlock()
	d.mapper.SetCameraDrag(enabled)
	return d.Snapshot(), ""
}

// padReset recreates the virtual controller if enabled, re-centering any
// stuck axes. A no-op while disabled.
func (d *DeviceState) padReset() (relay.Status, string) {
	d.mu.Lock()
	if d.gamepadEnabled {
		d.replacePad(d.inputMode == ModeGamepad)
	}
	d.mu.Unlock()
	return d.Snapshot(), ""
}

// boolParam unwraps an optional enabled parameter, defaulting to false.
func boolParam(p *relay.Params) bool {
	if p == nil {
		return false
	}
	return relay.BoolValue(p.Enabled, false)
}

// modeParam unwraps an optional mode parameter, defaulting to gamepad
// passthrough.
func modeParam(p *relay.Params) int {
	if p == nil || p.Mode == nil {
		return ModeGamepad
	}
	return *p.Mode
}
