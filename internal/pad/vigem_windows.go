//go:build windows

// Package pad presents a virtual game controller to the OS.
package pad

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// XUSB report button masks (XUSB_REPORT.wButtons).
const (
	btnDpadUp        = 0x0001
	btnDpadDown      = 0x0002
	btnDpadLeft      = 0x0004
	btnDpadRight     = 0x0008
	btnStart         = 0x0010
	btnBack          = 0x0020
	btnLeftThumb     = 0x0040
	btnRightThumb    = 0x0080
	btnLeftShoulder  = 0x0100
	btnRightShoulder = 0x0200
	btnA             = 0x1000
	btnB             = 0x2000
	btnX             = 0x4000
	btnY             = 0x8000
)

// vigemErrorNone is VIGEM_ERROR_NONE from the ViGEm SDK.
const vigemErrorNone = 0x20000000

// buttonMasks maps wire button names to XUSB masks.
var buttonMasks = map[string]uint16{
	"a":      btnA,
	"b":      btnB,
	"x":      btnX,
	"y":      btnY,
	"lb":     btnLeftShoulder,
	"rb":     btnRightShoulder,
	"back":   btnBack,
	"start":  btnStart,
	"ls":     btnLeftThumb,
	"rs":     btnRightThumb,
	"dup":    btnDpadUp,
	"ddown":  btnDpadDown,
	"dleft":  btnDpadLeft,
	"dright": btnDpadRight,
}

// xusbReport mirrors XUSB_REPORT from the ViGEm SDK.
type xusbReport struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

var (
	vigemDLL         = windows.NewLazyDLL("ViGEmClient.dll")
	procAlloc        = vigemDLL.NewProc("vigem_alloc")
	procConnect      = vigemDLL.NewProc("vigem_connect")
	procFree         = vigemDLL.NewProc("vigem_free")
	procTargetX360   = vigemDLL.NewProc("vigem_target_x360_alloc")
	procTargetAdd    = vigemDLL.NewProc("vigem_target_add")
	procTargetRemove = vigemDLL.NewProc("vigem_target_remove")
	procTargetFree   = vigemDLL.NewProc("vigem_target_free")
	procX360Update   = vigemDLL.NewProc("vigem_target_x360_update")
)

// X360 emulates an Xbox 360 pad through the ViGEm bus driver.
type X360 struct {
	mu     sync.Mutex
	client uintptr
	target uintptr
	report xusbReport
	sens   float64
	ready  bool
}

// New probes the ViGEm bus and attaches a virtual x360 target. A probe
// failure yields a degraded backend whose calls are no-ops, with the error
// recorded for status reporting.
func New(enabled bool, sens float64) Backend {
	if !enabled {
		return Disabled()
	}
	p := &X360{sens: sens}
	if err := p.connect(); err != nil {
		return &inert{err: err.Error()}
	}
	p.ready = true
	return p
}

// connect loads the client DLL and attaches a neutral virtual pad.
func (p *X360) connect() error {
	if err := vigemDLL.Load(); err != nil {
		return fmt.Errorf("ViGEmClient.dll not available: %w", err)
	}
	client, _, _ := procAlloc.Call()
	if client == 0 {
		return fmt.Errorf("vigem_alloc failed")
	}
	if rc, _, _ := procConnect.Call(client); rc != vigemErrorNone {
		procFree.Call(client)
		return fmt.Errorf("vigem_connect failed: 0x%x (is the ViGEm bus driver installed?)", rc)
	}
	target, _, _ := procTargetX360.Call()
	if target == 0 {
		procFree.Call(client)
		return fmt.Errorf("vigem_target_x360_alloc failed")
	}
	if rc, _, _ := procTargetAdd.Call(client, target); rc != vigemErrorNone {
		procTargetFree.Call(target)
		procFree.Call(client)
		return fmt.Errorf("vigem_target_add failed: 0x%x", rc)
	}
	p.client = client
	p.target = target
	return p.update(p.report)
}

// update pushes a full report to the virtual device.
func (p *X360) update(r xusbReport) error {
	if rc, _, _ := procX360Update.Call(p.client, p.target, uintptr(unsafe.Pointer(&r))); rc != vigemErrorNone {
		return fmt.Errorf("vigem_target_x360_update failed: 0x%x", rc)
	}
	return nil
}

// Ready reports whether the virtual device is attached.
func (p *X360) Ready() bool { return p.ready }

// Err returns an empty string; construction failures never produce an X360.
func (p *X360) Err() string { return "" }

// SetLeftStick updates the left thumbstick axes.
func (p *X360) SetLeftStick(x, y float64) {
	if !p.ready {
		return
	}
	p.mu.Lock()
	p.report.ThumbLX = axis(x * p.sens)
	p.report.ThumbLY = axis(y * p.sens)
	r := p.report
	p.mu.Unlock()
	_ = p.update(r)
}

// SetRightStick updates the right thumbstick axes.
func (p *X360) SetRightStick(x, y float64) {
	if !p.ready {
		return
	}
	p.mu.Lock()
	p.report.ThumbRX = axis(x * p.sens)
	p.report.ThumbRY = axis(y * p.sens)
	r := p.report
	p.mu.Unlock()
	_ = p.update(r)
}

// SetTrigger updates one of the analog triggers.
func (p *X360) SetTrigger(which string, value float64) {
	if !p.ready {
		return
	}
	p.mu.Lock()
	switch which {
	case "lt":
		p.report.LeftTrigger = trigger(value)
	case "rt":
		p.report.RightTrigger = trigger(value)
	}
	r := p.report
	p.mu.Unlock()
	_ = p.update(r)
}

// SetButton presses or releases a named button.
func (p *X360) SetButton(name string, pressed bool) {
	if !p.ready {
		return
	}
	mask, ok := buttonMasks[name]
	if !ok {
		return
	}
	p.mu.Lock()
	if pressed {
		p.report.Buttons |= mask
	} else {
		p.report.Buttons &^= mask
	}
	r := p.report
	p.mu.Unlock()
	_ = p.update(r)
}

// Neutralize zeroes sticks, triggers, and buttons without destroying the
// virtual device.
func (p *X360) Neutralize() {
	if !p.ready {
		return
	}
	p.mu.Lock()
	p.report = xusbReport{}
	r := p.report
	p.mu.Unlock()
	_ = p.update(r)
}

// Close detaches and frees the virtual device.
func (p *X360) Close() {
	if !p.ready {
		return
	}
	p.ready = false
	procTargetRemove.Call(p.client, p.target)
	procTargetFree.Call(p.target)
	procFree.Call(p.client)
}

// axis converts a [-1,1] float to a stick value, clamping out-of-range
// samples.
func axis(v float64) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

// trigger converts a [0,1] float to a trigger byte.
func trigger(v float64) uint8 {
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	return uint8(v * 255)
}
