package host

import "github.com/frudas24/padrelay/internal/relay"

// kbmCamClamp bounds a single camera delta. Touch resume on the phone can
// produce large spurious deltas.
const kbmCamClamp = 120.0

// route applies one input event to the devices. Injection failures are
// tolerated; remote input is best-effort by design of the session.
func (d *DeviceState) route(event string, data *relay.EventData) {
	if data == nil {
		data = &relay.EventData{}
	}
	lock, handle := d.focusTarget()
	d.tracker.MaybeRefocus(lock, handle)

	switch event {
	case "move":
		if d.injErr != nil {
			return
		}
		d.mover.Add(data.DX*d.cfg.MouseSens, data.DY*d.cfg.MouseSens)
		d.stats.bump("move")

	case "scroll":
		if d.injErr != nil {
			return
		}
		dy := clampF(data.DY, float64(d.cfg.MaxScroll))
		d.inj.Wheel(int(dy))
		d.stats.bump("scroll")

	case "click":
		if d.injErr != nil {
			return
		}
		button := data.Button
		if button == "" {
			button = "left"
		}
		d.inj.Button(button, relay.BoolValue(data.Down, true))
		d.stats.bump("click")

	case "type_text":
		if d.injErr != nil || data.Text == "" {
			return
		}
		d.inj.TypeText(data.Text)
		d.stats.bump("type")

	case "key":
		if d.injErr != nil || data.Name == "" {
			return
		}
		d.inj.Key(data.Name, relay.BoolValue(data.Down, true))
		d.stats.bump("key")

	case "pad_left":
		if !d.padOn() {
			return
		}
		if d.mode() == ModeGamepad {
			d.currentPad().SetLeftStick(data.X, data.Y)
		} else {
			d.mapper.SetLeftStick(data.X, data.Y)
		}
		d.stats.bump("pad")

	case "pad_right":
		if !d.padOn() {
			return
		}
		if d.mode() == ModeGamepad {
			d.currentPad().SetRightStick(data.X, data.Y)
		} else {
			d.mapper.SetRightStick(data.X, data.Y)
		}
		d.stats.bump("pad")

	case "pad_trigger":
		if !d.padOn() {
			return
		}
		if d.mode() == ModeGamepad {
			d.currentPad().SetTrigger(data.Which, data.Value)
		} else {
			d.mapper.SetTrigger(data.Which, data.Value)
		}
		d.stats.bump("pad")

	case "pad_button":
		if !d.padOn() {
			return
		}
		down := relay.BoolValue(data.Down, true)
		if d.mode() == ModeGamepad {
			d.currentPad().SetButton(data.Name, down)
		} else {
			d.mapper.SetButton(data.Name, down)
		}
		d.stats.bump("pad")

	case "kbm_cam_move":
		if !d.kbmOn() {
			return
		}
		dx := clampF(data.DX, kbmCamClamp)
		dy := clampF(data.DY, kbmCamClamp)
		d.mapper.CameraMove(dx, dy)
		d.stats.bump("pad")

	case "kbm_cam_hold":
		if !d.kbmOn() {
			return
		}
		d.mapper.SetCameraActive(relay.BoolValue(data.Down, false))
	}
}

// padOn reports whether pad events should be processed at all.
func (d *DeviceState) padOn() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.gamepadEnabled
}

// kbmOn reports whether KBM camera events should be processed.
func (d *DeviceState) kbmOn() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.gamepadEnabled && d.inputMode == ModeKBM
}

// clampF bounds v to ±limit.
func clampF(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
