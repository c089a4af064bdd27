// Package mover converts bursty fractional motion samples into a
// bounded-rate stream of discrete whole-pixel pointer moves.
package mover

import (
	"math"
	"sync"
	"time"
)

const (
	minHz = 60
	maxHz = 1000
)

// MoveFunc injects one discrete relative pointer move.
type MoveFunc func(dx, dy int)

// Mover accumulates sub-pixel motion under a lock and flushes whole pixels
// at a fixed rate, preserving the fractional remainder across ticks.
type Mover struct {
	mu      sync.Mutex
	dx, dy  float64
	maxStep float64
	period  time.Duration
	move    MoveFunc
	stop    chan struct{}
	done    chan struct{}
}

// New creates a mover flushing at the given rate, clamped to [60,1000] Hz,
// with each flushed move bounded to ±maxStep pixels per axis.
func New(hz, maxStep int, move MoveFunc) *Mover {
	if hz < minHz {
		hz = minHz
	}
	if hz > maxHz {
		hz = maxHz
	}
	return &Mover{
		maxStep: float64(maxStep),
		period:  time.Second / time.Duration(hz),
		move:    move,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the flush loop.
func (m *Mover) Start() {
	go m.loop()
}

// Stop terminates the flush loop.
func (m *Mover) Stop() {
	close(m.stop)
	<-m.done
}

// Add accumulates a fractional motion sample.
func (m *Mover) Add(dx, dy float64) {
	m.mu.Lock()
	m.dx += dx
	m.dy += dy
	m.mu.Unlock()
}

// Pending returns the accumulated remainder not yet flushed.
func (m *Mover) Pending() (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dx, m.dy
}

// Flush clamps the pending remainder to the per-tick maximum, splits off the
// whole-pixel part truncating toward zero, and injects it. The fractional
// remainder (and any clamped excess) stays pending for later ticks.
func (m *Mover) Flush() (int, int) {
	m.mu.Lock()
	ix := math.Trunc(clamp(m.dx, m.maxStep))
	iy := math.Trunc(clamp(m.dy, m.maxStep))
	m.dx -= ix
	m.dy -= iy
	m.mu.Unlock()
	if ix != 0 || iy != 0 {
		m.move(int(ix), int(iy))
	}
	return int(ix), int(iy)
}

// loop flushes pending motion once per period.
func (m *Mover) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.period)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.Flush()
		}
	}
}

// clamp bounds v to ±limit.
func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
