package host

import (
	"fmt"
	"log"
	"net"

	"github.com/frudas24/padrelay/internal/relay"
)

// Server accepts one relay connection at a time and serves it until it
// drops, then waits for the next one.
type Server struct {
	state *DeviceState
	ln    net.Listener
}

// NewServer builds a relay server over the given device state.
func NewServer(state *DeviceState) *Server {
	return &Server{state: state}
}

// Listen binds the relay listener.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("relay listen: %w", err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts relay connections sequentially. It returns when the
// listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return err
		}
		log.Printf("relay connected from %s", conn.RemoteAddr())
		s.serveConn(conn)
		log.Printf("relay disconnected; waiting")
	}
}

// Close shuts the listener down.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

// serveConn runs one relay session. Input events are applied only while a
// phone client is armed; any disconnect releases all held input.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetNoDelay(true)
	}

	wr := relay.NewWriter(conn)
	rd := relay.NewReader(conn)
	armed := false

	defer func() {
		s.state.mapper.ReleaseAll()
		s.state.currentPad().Neutralize()
	}()

	if err := wr.Write(s.statusMessage()); err != nil {
		return
	}

	for {
		msg, err := rd.Read()
		if err != nil {
			return
		}
		switch msg.T {
		case "hello":
			if err := wr.Write(s.statusMessage()); err != nil {
				return
			}
		case "rpc":
			res := s.handleRPC(msg)
			if err := wr.Write(res); err != nil {
				return
			}
		case "client":
			switch msg.State {
			case "connected":
				armed = true
				who := msg.Meta["ip"]
				if who == "" {
					who = "unknown"
				}
				log.Printf("phone connected (%s); input enabled", who)
			case "disconnected":
				armed = false
				s.state.mapper.ReleaseAll()
				log.Printf("phone disconnected; input disabled")
			}
		case "input":
			if !armed {
				continue
			}
			s.state.route(msg.E, msg.D)
		}
	}
}

// handleRPC dispatches one RPC frame and shapes the result frame. Handler
// panics are converted into failed results so one bad request cannot take
// the session down.
func (s *Server) handleRPC(msg *relay.Message) *relay.Message {
	status, errTag := s.safeDispatch(msg.M, msg.P)
	ok := errTag == ""
	res := &relay.Message{T: "rpc_result", ID: msg.ID, OK: &ok, Error: errTag}
	if ok {
		st := status
		res.Result = &st
	}
	return res
}

// safeDispatch runs one RPC handler, recovering panics into an error tag.
func (s *Server) safeDispatch(method string, p *relay.Params) (status relay.Status, errTag string) {
	defer func() {
		if r := recover(); r != nil {
			status = relay.Status{}
			errTag = fmt.Sprintf("handler fault: %v", r)
		}
	}()
	return s.state.dispatch(method, p)
}

// statusMessage builds a flat status frame from the current snapshot.
func (s *Server) statusMessage() *relay.Message {
	st := s.state.Snapshot()
	return &relay.Message{T: "status", Status: &st}
}
