// Package web serves the phone-facing control surface: a websocket that
// forwards touch events into the relay session and answers UI requests.
package web

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frudas24/padrelay/internal/config"
	"github.com/frudas24/padrelay/internal/relay"
)

// Relay is the slice of the relay client the web server uses.
type Relay interface {
	Connected() bool
	Capabilities() relay.Capabilities
	LastStatus() (relay.Status, bool)
	Dropped() uint64
	SendClientState(state string, meta map[string]string)
	SendInput(event string, d *relay.EventData)
	Call(method string, params *relay.Params, timeout time.Duration) relay.Result
}

// rpcMethod describes one UI-exposed RPC and its deadline.
type rpcMethod struct {
	name    string
	timeout time.Duration
}

// rpcMethods maps UI request types to relay RPCs. Device-recreating calls
// get a longer deadline.
var rpcMethods = map[string]rpcMethod{
	"select_window":       {"select_foreground_window", 2 * time.Second},
	"get_selected_window": {"get_selected_window", 2 * time.Second},
	"set_focus_lock":      {"set_focus_lock", 2 * time.Second},
	"set_input_mode":      {"set_input_mode", 2 * time.Second},
	"set_kbm_camera_drag": {"set_kbm_camera_drag", 2 * time.Second},
	"gamepad_status":      {"gamepad_status", 2 * time.Second},
	"pad_reset":           {"pad_reset", 4 * time.Second},
	"set_gamepad_enabled": {"set_gamepad_enabled", 4 * time.Second},
}

// inputEvents is the set of event types forwarded to the relay verbatim.
var inputEvents = map[string]bool{
	"move":         true,
	"scroll":       true,
	"click":        true,
	"type_text":    true,
	"key":          true,
	"pad_left":     true,
	"pad_right":    true,
	"pad_trigger":  true,
	"pad_button":   true,
	"kbm_cam_move": true,
	"kbm_cam_hold": true,
}

// uiMessage is one websocket frame to or from the phone.
type uiMessage struct {
	T       string           `json:"t"`
	D       *relay.EventData `json:"d,omitempty"`
	Enabled *bool            `json:"enabled,omitempty"`
	Mode    *int             `json:"mode,omitempty"`
	Req     string           `json:"req,omitempty"`
	OK      *bool            `json:"ok,omitempty"`
	Result  *relay.Status    `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// serverStatus is the snapshot pushed to the phone on connect.
type serverStatus struct {
	T              string        `json:"t"`
	Relay          bool          `json:"relay"`
	Mouse          bool          `json:"mouse"`
	Keyboard       bool          `json:"keyboard"`
	Gamepad        bool          `json:"gamepad"`
	Transport      string        `json:"transport"`
	GamepadError   string        `json:"gamepad_error,omitempty"`
	SelectedWindow *relay.Window `json:"selected_window,omitempty"`
	FocusLock      bool          `json:"focus_lock"`
}

// Server handles the phone websocket and the diagnostic endpoints.
type Server struct {
	cfg      config.Web
	relay    Relay
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewServer builds a web server over the given relay.
func NewServer(cfg config.Web, r Relay) *Server {
	return &Server{
		cfg:   cfg,
		relay: r,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Phones connect by LAN IP, so origins never match.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes attaches the handlers to a mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/diag", s.handleDiag)
}

// handleWS authenticates and serves one phone connection. A second phone
// is rejected while one is active.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if !s.acceptConn(conn) {
		conn.WriteJSON(uiMessage{T: "error", Error: "another client is connected"})
		conn.Close()
		return
	}
	ip := remoteIP(r)
	transport := r.URL.Query().Get("transport")
	if transport == "" {
		transport = "websocket"
	}
	log.Printf("phone connected ip=%s", ip)
	s.relay.SendClientState("connected", map[string]string{
		"ip": ip,
		"ua": r.Header.Get("User-Agent"),
	})
	s.writeJSON(conn, s.statusPayload(transport))

	defer s.cleanupConn(conn, ip)
	for {
		var msg uiMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.handleMessage(conn, &msg, transport)
	}
}

// handleMessage routes one phone frame.
func (s *Server) handleMessage(conn *websocket.Conn, msg *uiMessage, transport string) {
	if inputEvents[msg.T] {
		s.relay.SendInput(msg.T, msg.D)
		return
	}
	if m, ok := rpcMethods[msg.T]; ok {
		params := &relay.Params{Enabled: msg.Enabled, Mode: msg.Mode}
		res := s.relay.Call(m.name, params, m.timeout)
		okRes := res.OK
		s.writeJSON(conn, uiMessage{
			T:      "rpc_result",
			Req:    msg.T,
			OK:     &okRes,
			Result: res.Result,
			Error:  res.Error,
		})
		return
	}
	if msg.T == "status" {
		s.writeJSON(conn, s.statusPayload(transport))
	}
}

// statusPayload builds the connect-time status frame.
func (s *Server) statusPayload(transport string) serverStatus {
	caps := s.relay.Capabilities()
	st := serverStatus{
		T:         "server_status",
		Relay:     s.relay.Connected(),
		Mouse:     caps.Mouse,
		Keyboard:  caps.Keyboard,
		Gamepad:   caps.Gamepad,
		Transport: transport,
	}
	if last, ok := s.relay.LastStatus(); ok {
		st.GamepadError = last.GamepadError
		win := last.SelectedWindow
		st.SelectedWindow = &win
		st.FocusLock = last.FocusLock
	}
	return st
}

// acceptConn registers the phone connection if no other is active.
func (s *Server) acceptConn(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return false
	}
	s.conn = conn
	return true
}

// cleanupConn tears the phone connection down and disarms the host.
func (s *Server) cleanupConn(conn *websocket.Conn, ip string) {
	conn.Close()
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	log.Printf("phone disconnected ip=%s", ip)
	s.relay.SendClientState("disconnected", map[string]string{"ip": ip})
}

// writeJSON serializes concurrent writers onto the phone socket.
func (s *Server) writeJSON(conn *websocket.Conn, v any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	conn.WriteJSON(v)
}

// handleHealth reports liveness and relay capabilities.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	caps := s.relay.Capabilities()
	writeJSONBody(w, map[string]any{
		"ok":              true,
		"relay_connected": s.relay.Connected(),
		"relay_capabilities": map[string]bool{
			"mouse":    caps.Mouse,
			"keyboard": caps.Keyboard,
			"gamepad":  caps.Gamepad,
		},
	})
}

// handleDiag reports addressing and relay details for LAN setup debugging.
func (s *Server) handleDiag(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"request_ip":      remoteIP(r),
		"lan_ip_guess":    GuessLANIP(),
		"web_host":        s.cfg.Host,
		"web_port":        s.cfg.Port,
		"relay_host":      s.cfg.RelayHost,
		"relay_port":      s.cfg.RelayPort,
		"relay_connected": s.relay.Connected(),
		"relay_dropped":   s.relay.Dropped(),
		"token_enabled":   s.cfg.Token != "",
	}
	if last, ok := s.relay.LastStatus(); ok {
		body["relay_last_status"] = last
	}
	writeJSONBody(w, body)
}

// authorized checks the access token when one is configured.
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.Token == "" {
		return true
	}
	return r.URL.Query().Get("token") == s.cfg.Token
}

// GuessLANIP asks the OS which interface it would route externally. No
// packets are sent.
func GuessLANIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "unknown"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "unknown"
}

// writeJSONBody writes a JSON response.
func writeJSONBody(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// remoteIP extracts the peer address without the port.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
