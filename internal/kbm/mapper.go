// Package kbm translates gamepad-shaped input into keyboard and mouse
// actions for games without controller support.
package kbm

import (
	"math"
	"sync"
	"time"

	"github.com/frudas24/padrelay/internal/mover"
	"github.com/frudas24/padrelay/internal/wininput"
)

const (
	// moveDeadzone zeroes small left-stick samples.
	moveDeadzone = 0.18
	// moveThreshold is where a movement key engages.
	moveThreshold = 0.35
	// camDeadzone ignores right-stick noise near center.
	camDeadzone = 0.12
	// camHz is the camera sampling rate of the background loop.
	camHz = 120
)

// buttonKeys maps face and shoulder buttons to keyboard keys.
var buttonKeys = map[string]string{
	"a":      "space",
	"b":      "c",
	"x":      "r",
	"y":      "e",
	"back":   "esc",
	"start":  "enter",
	"dup":    "up",
	"ddown":  "down",
	"dleft":  "left",
	"dright": "right",
	"lb":     "shift",
	"rb":     "ctrl",
}

// Mapper holds per-connection key and button state for KBM mode.
type Mapper struct {
	inj      wininput.Injector
	mover    *mover.Mover
	camSens  float64
	camSpeed float64

	mu           sync.Mutex
	rx, ry       float64
	forward      bool
	back         bool
	left         bool
	right        bool
	lmb          bool
	rmb          bool
	rmbTrigger   bool
	cameraActive bool
	cameraDrag   bool
	held         map[string]bool

	stop chan struct{}
	done chan struct{}
}

// New builds a mapper injecting through inj and steering the camera
// through m. camSens scales touchpad camera deltas and camSpeed scales
// right-stick camera motion.
func New(inj wininput.Injector, m *mover.Mover, camSens, camSpeed float64) *Mapper {
	if camSens <= 0 {
		camSens = 1
	}
	if camSpeed <= 0 {
		camSpeed = 1
	}
	return &Mapper{
		inj:      inj,
		mover:    m,
		camSens:  camSens,
		camSpeed: camSpeed,
		held:     map[string]bool{},
	}
}

// Start launches the right-stick camera loop.
func (k *Mapper) Start() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stop != nil {
		return
	}
	k.stop = make(chan struct{})
	k.done = make(chan struct{})
	go k.loop(k.stop, k.done)
}

// Stop halts the camera loop and waits for it to exit.
func (k *Mapper) Stop() {
	k.mu.Lock()
	stop, done := k.stop, k.done
	k.stop, k.done = nil, nil
	k.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// SetLeftStick maps the left stick to WASD. Each key is a pure function of
// the latest sample; transitions are edge-triggered so repeats are no-ops.
func (k *Mapper) SetLeftStick(x, y float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.flip(&k.forward, wantKey(y, 1), "w")
	k.flip(&k.back, wantKey(y, -1), "s")
	k.flip(&k.right, wantKey(x, 1), "d")
	k.flip(&k.left, wantKey(x, -1), "a")
}

// SetRightStick records camera axes consumed by the background loop.
func (k *Mapper) SetRightStick(x, y float64) {
	k.mu.Lock()
	k.rx, k.ry = x, y
	k.mu.Unlock()
}

// CameraMove feeds a touchpad camera delta to the motion accumulator.
func (k *Mapper) CameraMove(dx, dy float64) {
	k.mover.Add(dx*k.camSens, dy*k.camSens)
}

// SetCameraActive toggles the hold-to-aim touch zone state.
func (k *Mapper) SetCameraActive(active bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.cameraActive = active
	k.updateRMB()
}

// SetCameraDrag toggles whether an active camera zone also holds the
// right mouse button.
func (k *Mapper) SetCameraDrag(drag bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.cameraDrag = drag
	k.updateRMB()
}

// SetTrigger maps rt to the left mouse button and lt to an aim latch on
// the right mouse button. Edges fire at 0.5.
func (k *Mapper) SetTrigger(which string, value float64) {
	pressed := value > 0.5
	k.mu.Lock()
	defer k.mu.Unlock()
	switch which {
	case "rt":
		if pressed != k.lmb {
			k.lmb = pressed
			k.inj.Button("left", pressed)
		}
	case "lt":
		k.rmbTrigger = pressed
		k.updateRMB()
	}
}

// SetButton maps a named gamepad button to its keyboard key.
func (k *Mapper) SetButton(name string, down bool) {
	key, ok := buttonKeys[name]
	if !ok {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.held[key] == down {
		return
	}
	k.held[key] = down
	k.inj.Key(key, down)
}

// ReleaseAll releases every key and mouse button this mapper may hold.
// Safe to call repeatedly.
func (k *Mapper) ReleaseAll() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.flip(&k.forward, false, "w")
	k.flip(&k.back, false, "s")
	k.flip(&k.left, false, "a")
	k.flip(&k.right, false, "d")
	for key, down := range k.held {
		if down {
			k.held[key] = false
			k.inj.Key(key, false)
		}
	}
	if k.lmb {
		k.lmb = false
		k.inj.Button("left", false)
	}
	k.rmbTrigger = false
	k.cameraActive = false
	k.updateRMB()
	k.rx, k.ry = 0, 0
}

// CameraDrag reports the current right-button drag setting.
func (k *Mapper) CameraDrag() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.cameraDrag
}

// updateRMB reconciles the physical right mouse button against the aim
// latch and the camera drag state. Callers hold k.mu.
func (k *Mapper) updateRMB() {
	want := k.rmbTrigger || (k.cameraActive && k.cameraDrag)
	if want == k.rmb {
		return
	}
	k.rmb = want
	k.inj.Button("right", want)
}

// flip presses or releases one movement key on a state edge. Callers
// hold k.mu.
func (k *Mapper) flip(state *bool, want bool, key string) {
	if *state == want {
		return
	}
	*state = want
	k.inj.Key(key, want)
}

// loop samples the right stick at camHz and feeds the accumulator.
func (k *Mapper) loop(stop, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(time.Second / camHz)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			k.cameraTick()
		}
	}
}

// cameraTick converts the current right-stick deflection into one
// camera step.
func (k *Mapper) cameraTick() {
	k.mu.Lock()
	x, y := k.rx, k.ry
	k.mu.Unlock()
	if math.Abs(x) < camDeadzone && math.Abs(y) < camDeadzone {
		return
	}
	k.mover.Add(x*k.camSpeed, -y*k.camSpeed)
}

// wantKey applies the deadzone and press threshold to one stick axis in
// the given direction.
func wantKey(axis, dir float64) bool {
	if math.Abs(axis) < moveDeadzone {
		return false
	}
	return axis*dir > moveThreshold
}
