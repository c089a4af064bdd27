package host

import (
	"math"
	"net"
	"testing"
	"time"

	"github.com/frudas24/padrelay/internal/config"
	"github.com/frudas24/padrelay/internal/relay"
)

// sessionEnd wires one relay session over an in-memory pipe.
type sessionEnd struct {
	ring *testRing
	wr   *relay.Writer
	rd   *relay.Reader
	conn net.Conn
	done chan struct{}
}

// newSession starts serveConn on one end of a pipe and returns the peer.
func newSession(t *testing.T, cfg config.Host) *sessionEnd {
	t.Helper()
	ring := newTestState(t, cfg)
	server := NewServer(ring.state)
	local, remote := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		server.serveConn(remote)
	}()
	t.Cleanup(func() {
		local.Close()
		<-done
	})
	return &sessionEnd{
		ring: ring,
		wr:   relay.NewWriter(local),
		rd:   relay.NewReader(local),
		conn: local,
		done: done,
	}
}

// readType reads frames until one with the wanted tag arrives.
func (s *sessionEnd) readType(t *testing.T, want string) *relay.Message {
	t.Helper()
	for {
		m, err := s.rd.Read()
		if err != nil {
			t.Fatalf("read waiting for %q: %v", want, err)
		}
		if m.T == want {
			return m
		}
	}
}

// arm sends the client-connected frame and syncs on a status round trip.
func (s *sessionEnd) arm(t *testing.T) {
	t.Helper()
	if err := s.wr.Write(&relay.Message{T: "client", State: "connected", Meta: map[string]string{"ip": "10.0.0.2"}}); err != nil {
		t.Fatalf("arm: %v", err)
	}
	s.sync(t)
}

// sync round-trips a hello so previously written frames are processed.
func (s *sessionEnd) sync(t *testing.T) {
	t.Helper()
	if err := s.wr.Write(&relay.Message{T: "hello", V: 1}); err != nil {
		t.Fatalf("sync write: %v", err)
	}
	s.readType(t, "status")
}

// TestServeConn_SendsStatusOnConnect verifies the greeting status frame.
func TestServeConn_SendsStatusOnConnect(t *testing.T) {
	s := newSession(t, config.Host{InputMode: ModeKBM})

	m := s.readType(t, "status")
	if m.Status == nil || !m.Mouse || m.InputMode != ModeKBM {
		t.Fatalf("unexpected status frame: %#v", m)
	}
}

// TestServeConn_InputIgnoredWhileDisarmed verifies input before a client
// connects is dropped.
func TestServeConn_InputIgnoredWhileDisarmed(t *testing.T) {
	s := newSession(t, config.Host{InputMode: ModeKBM})
	s.readType(t, "status")

	s.wr.Write(&relay.Message{T: "input", E: "move", D: &relay.EventData{DX: 10, DY: 10}})
	s.sync(t)
	if dx, dy := s.ring.mv.Pending(); dx != 0 || dy != 0 {
		t.Fatalf("expected no motion while disarmed, got (%f,%f)", dx, dy)
	}
}

// TestServeConn_MoveBurstAccumulates verifies armed move events reach the
// accumulator and flush as one whole-pixel move.
func TestServeConn_MoveBurstAccumulates(t *testing.T) {
	s := newSession(t, config.Host{InputMode: ModeKBM})
	s.readType(t, "status")
	s.arm(t)

	for i := 0; i < 5; i++ {
		s.wr.Write(&relay.Message{T: "input", E: "move", D: &relay.EventData{DX: 10.6, DY: -3.2}})
	}
	s.sync(t)

	ix, iy := s.ring.mv.Flush()
	if math.Abs(float64(ix)-53) > 1 || math.Abs(float64(iy)+16) > 1 {
		t.Fatalf("expected approximately (53,-16), got (%d,%d)", ix, iy)
	}
	calls := s.ring.inj.Recorded()
	if len(calls) != 1 || calls[0].Name != "move" {
		t.Fatalf("expected single injected move, got %#v", calls)
	}
}

// TestServeConn_ScrollClamped verifies scroll deltas clamp to the limit.
func TestServeConn_ScrollClamped(t *testing.T) {
	s := newSession(t, config.Host{InputMode: ModeKBM, MaxScroll: 100})
	s.readType(t, "status")
	s.arm(t)

	s.wr.Write(&relay.Message{T: "input", E: "scroll", D: &relay.EventData{DY: 500}})
	s.sync(t)

	calls := s.ring.inj.Recorded()
	if len(calls) != 1 || calls[0].Name != "wheel" || calls[0].Y != 100 {
		t.Fatalf("expected clamped wheel, got %#v", calls)
	}
}

// TestServeConn_RPCOverWire verifies request/response correlation and the
// unknown-method tag on the wire.
func TestServeConn_RPCOverWire(t *testing.T) {
	s := newSession(t, config.Host{InputMode: ModeKBM})
	s.readType(t, "status")

	s.wr.Write(&relay.Message{T: "rpc", ID: "7", M: "gamepad_status"})
	m := s.readType(t, "rpc_result")
	if m.ID != "7" || !relay.BoolValue(m.OK, false) || m.Result == nil {
		t.Fatalf("unexpected rpc_result: %#v", m)
	}

	s.wr.Write(&relay.Message{T: "rpc", ID: "8", M: "nope"})
	m = s.readType(t, "rpc_result")
	if m.ID != "8" || relay.BoolValue(m.OK, true) || m.Error != "unknown_method" {
		t.Fatalf("unexpected failure frame: %#v", m)
	}
}

// TestServeConn_ClientDisconnectDisarmsAndReleases verifies a phone
// disconnect releases held KBM input and stops routing.
func TestServeConn_ClientDisconnectDisarmsAndReleases(t *testing.T) {
	s := newSession(t, config.Host{InputMode: ModeKBM, EnableGamepad: true})
	s.readType(t, "status")
	s.arm(t)

	s.wr.Write(&relay.Message{T: "input", E: "pad_button", D: &relay.EventData{Name: "a", Down: boolPtr(true)}})
	s.sync(t)
	s.ring.inj.Reset()

	s.wr.Write(&relay.Message{T: "client", State: "disconnected"})
	s.sync(t)

	released := false
	for _, c := range s.ring.inj.Recorded() {
		if c.Name == "key" && c.Key == "space" && !c.Down {
			released = true
		}
	}
	if !released {
		t.Fatalf("expected held key released on disconnect, got %#v", s.ring.inj.Recorded())
	}

	s.ring.inj.Reset()
	s.wr.Write(&relay.Message{T: "input", E: "pad_button", D: &relay.EventData{Name: "a", Down: boolPtr(true)}})
	s.sync(t)
	if got := s.ring.inj.Recorded(); len(got) != 0 {
		t.Fatalf("expected input dropped after disconnect, got %#v", got)
	}
}

// TestServeConn_RelayDropReleases verifies tearing the transport down
// releases held input.
func TestServeConn_RelayDropReleases(t *testing.T) {
	s := newSession(t, config.Host{InputMode: ModeKBM, EnableGamepad: true})
	s.readType(t, "status")
	s.arm(t)

	s.wr.Write(&relay.Message{T: "input", E: "pad_button", D: &relay.EventData{Name: "a", Down: boolPtr(true)}})
	s.sync(t)
	s.ring.inj.Reset()

	s.conn.Close()
	select {
	case <-s.done:
	case <-time.After(3 * time.Second):
		t.Fatalf("session did not end")
	}

	released := false
	for _, c := range s.ring.inj.Recorded() {
		if c.Name == "key" && c.Key == "space" && !c.Down {
			released = true
		}
	}
	if !released {
		t.Fatalf("expected held key released on transport drop, got %#v", s.ring.inj.Recorded())
	}
}
