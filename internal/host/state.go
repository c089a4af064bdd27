// Package host implements the privileged injection process: the relay
// listener, the RPC surface, and the input event router.
package host

import (
	"sync"

	"github.com/frudas24/padrelay/internal/config"
	"github.com/frudas24/padrelay/internal/focus"
	"github.com/frudas24/padrelay/internal/kbm"
	"github.com/frudas24/padrelay/internal/mover"
	"github.com/frudas24/padrelay/internal/pad"
	"github.com/frudas24/padrelay/internal/relay"
	"github.com/frudas24/padrelay/internal/wininput"
	"github.com/frudas24/padrelay/internal/winman"
)

// Input modes.
const (
	// ModeGamepad forwards pad events to the virtual controller.
	ModeGamepad = 0
	// ModeKBM translates pad events into keyboard and mouse actions.
	ModeKBM = 1
)

// DeviceState owns the injection devices and the mutable session state
// shared by the RPC handlers and the input router.
type DeviceState struct {
	cfg     config.Host
	inj     wininput.Injector
	injErr  error
	wm      winman.Manager
	mover   *mover.Mover
	mapper  *kbm.Mapper
	tracker *focus.Tracker
	stats   *stats

	mu             sync.RWMutex
	pad            pad.Backend
	inputMode      int
	gamepadEnabled bool
	focusLock      bool
	kbmCameraDrag  bool
	selected       relay.Window
}

// NewDeviceState wires the injection devices into a device state. injErr
// records whether real input injection is available; a failed injector
// still yields a working state so status reporting and RPC keep working.
func NewDeviceState(cfg config.Host, inj wininput.Injector, injErr error, wm winman.Manager, mv *mover.Mover, mapper *kbm.Mapper, tracker *focus.Tracker) *DeviceState {
	mode := cfg.InputMode
	if mode != ModeGamepad {
		mode = ModeKBM
	}
	d := &DeviceState{
		cfg:            cfg,
		inj:            inj,
		injErr:         injErr,
		wm:             wm,
		mover:          mv,
		mapper:         mapper,
		tracker:        tracker,
		stats:          newStats(cfg.LogInput),
		inputMode:      mode,
		gamepadEnabled: cfg.EnableGamepad,
	}
	d.pad = pad.New(cfg.EnableGamepad && mode == ModeGamepad, cfg.JoySens)
	d.stats.Start()
	return d
}

// Snapshot builds a full device-state status frame.
func (d *DeviceState) Snapshot() relay.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return relay.Status{
		Mouse:          d.injErr == nil,
		Keyboard:       d.injErr == nil,
		Gamepad:        d.pad.Ready(),
		GamepadEnabled: d.gamepadEnabled,
		GamepadError:   d.pad.Err(),
		InputMode:      d.inputMode,
		KbmCameraDrag:  d.kbmCameraDrag,
		SelectedWindow: d.selected,
		FocusLock:      d.focusLock,
	}
}

// Close releases held input and detaches the virtual controller.
func (d *DeviceState) Close() {
	d.stats.Stop()
	d.mapper.ReleaseAll()
	d.mu.Lock()
	p := d.pad
	d.mu.Unlock()
	p.Neutralize()
	p.Close()
}

// mode returns the current input mode.
func (d *DeviceState) mode() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.inputMode
}

// currentPad returns the active gamepad backend.
func (d *DeviceState) currentPad() pad.Backend {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pad
}

// focusTarget returns the focus-lock arming state and the selected handle.
func (d *DeviceState) focusTarget() (bool, uint64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.focusLock, d.selected.Handle
}

// replacePad swaps in a fresh gamepad backend, detaching the old one.
// Callers hold d.mu.
func (d *DeviceState) replacePad(enabled bool) {
	old := d.pad
	d.pad = pad.New(enabled, d.cfg.JoySens)
	old.Neutralize()
	old.Close()
}
