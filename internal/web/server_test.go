package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frudas24/padrelay/internal/config"
	"github.com/frudas24/padrelay/internal/relay"
)

// relayCall records one forwarded call.
type relayCall struct {
	kind   string
	event  string
	data   *relay.EventData
	state  string
	meta   map[string]string
	method string
	params *relay.Params
}

// fakeRelay is a scripted relay client for web tests.
type fakeRelay struct {
	connected bool
	caps      relay.Capabilities
	status    *relay.Status
	result    relay.Result

	mu    sync.Mutex
	calls []relayCall
}

// Connected reports the scripted session state.
func (f *fakeRelay) Connected() bool { return f.connected }

// Capabilities returns the scripted capabilities.
func (f *fakeRelay) Capabilities() relay.Capabilities { return f.caps }

// LastStatus returns the scripted snapshot.
func (f *fakeRelay) LastStatus() (relay.Status, bool) {
	if f.status == nil {
		return relay.Status{}, false
	}
	return *f.status, true
}

// Dropped reports zero.
func (f *fakeRelay) Dropped() uint64 { return 0 }

// SendClientState records the forwarded state change.
func (f *fakeRelay) SendClientState(state string, meta map[string]string) {
	f.record(relayCall{kind: "client", state: state, meta: meta})
}

// SendInput records the forwarded event.
func (f *fakeRelay) SendInput(event string, d *relay.EventData) {
	f.record(relayCall{kind: "input", event: event, data: d})
}

// Call records the RPC and returns the scripted result.
func (f *fakeRelay) Call(method string, params *relay.Params, timeout time.Duration) relay.Result {
	f.record(relayCall{kind: "rpc", method: method, params: params})
	return f.result
}

// record appends one call under the lock.
func (f *fakeRelay) record(c relayCall) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

// recorded returns a copy of the forwarded calls.
func (f *fakeRelay) recorded() []relayCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]relayCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// waitForCalls polls until the fake has recorded at least n calls.
func (f *fakeRelay) waitForCalls(t *testing.T, n int) []relayCall {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if calls := f.recorded(); len(calls) >= n {
			return calls
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d forwarded calls, got %#v", n, f.recorded())
	return nil
}

// newWebTest starts an HTTP server over a fake relay.
func newWebTest(t *testing.T, cfg config.Web, r *fakeRelay) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewServer(cfg, r).RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// dialWS opens a websocket to the test server.
func dialWS(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// TestWS_ConnectPushesServerStatus verifies the connect-time handshake.
func TestWS_ConnectPushesServerStatus(t *testing.T) {
	r := &fakeRelay{
		connected: true,
		caps:      relay.Capabilities{Mouse: true, Keyboard: true},
		status:    &relay.Status{FocusLock: true, SelectedWindow: relay.Window{Handle: 42}},
	}
	conn := dialWS(t, newWebTest(t, config.Web{}, r), "")

	var st serverStatus
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if st.T != "server_status" || !st.Relay || !st.Mouse || !st.FocusLock {
		t.Fatalf("unexpected status: %#v", st)
	}
	if st.Transport != "websocket" {
		t.Fatalf("expected default transport hint, got %q", st.Transport)
	}
	if st.SelectedWindow == nil || st.SelectedWindow.Handle != 42 {
		t.Fatalf("selected window missing: %#v", st.SelectedWindow)
	}

	calls := r.waitForCalls(t, 1)
	if calls[0].kind != "client" || calls[0].state != "connected" {
		t.Fatalf("expected connected client state, got %#v", calls[0])
	}
}

// TestWS_TransportHintEchoed verifies a client-supplied transport hint is
// reflected in the status frame.
func TestWS_TransportHintEchoed(t *testing.T) {
	r := &fakeRelay{connected: true}
	conn := dialWS(t, newWebTest(t, config.Web{}, r), "?transport=polling")

	var st serverStatus
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if st.Transport != "polling" {
		t.Fatalf("expected transport hint echoed, got %q", st.Transport)
	}
}

// TestWS_ForwardsInputEvents verifies touch events pass through verbatim.
func TestWS_ForwardsInputEvents(t *testing.T) {
	r := &fakeRelay{connected: true}
	conn := dialWS(t, newWebTest(t, config.Web{}, r), "")

	var st serverStatus
	conn.ReadJSON(&st)

	conn.WriteJSON(uiMessage{T: "move", D: &relay.EventData{DX: 3.5, DY: -1}})
	conn.WriteJSON(uiMessage{T: "pad_trigger", D: &relay.EventData{Which: "rt", Value: 0.8}})

	calls := r.waitForCalls(t, 3)
	var inputs []relayCall
	for _, c := range calls {
		if c.kind == "input" {
			inputs = append(inputs, c)
		}
	}
	if len(inputs) != 2 || inputs[0].event != "move" || inputs[0].data.DX != 3.5 {
		t.Fatalf("unexpected forwarded inputs: %#v", inputs)
	}
	if inputs[1].event != "pad_trigger" || inputs[1].data.Which != "rt" {
		t.Fatalf("unexpected trigger event: %#v", inputs[1])
	}
}

// TestWS_RPCRoundTrip verifies UI requests map onto relay RPCs and the
// result comes back tagged with the request type.
func TestWS_RPCRoundTrip(t *testing.T) {
	r := &fakeRelay{
		connected: true,
		result:    relay.Result{OK: true, Result: &relay.Status{GamepadEnabled: true}},
	}
	conn := dialWS(t, newWebTest(t, config.Web{}, r), "")

	var st serverStatus
	conn.ReadJSON(&st)

	enabled := true
	conn.WriteJSON(uiMessage{T: "set_gamepad_enabled", Enabled: &enabled})
	var res uiMessage
	if err := conn.ReadJSON(&res); err != nil {
		t.Fatalf("read result: %v", err)
	}
	if res.T != "rpc_result" || res.Req != "set_gamepad_enabled" {
		t.Fatalf("unexpected result frame: %#v", res)
	}
	if res.OK == nil || !*res.OK || res.Result == nil || !res.Result.GamepadEnabled {
		t.Fatalf("result payload missing: %#v", res)
	}

	for _, c := range r.recorded() {
		if c.kind == "rpc" {
			if c.method != "set_gamepad_enabled" || c.params.Enabled == nil || !*c.params.Enabled {
				t.Fatalf("unexpected rpc call: %#v", c)
			}
			return
		}
	}
	t.Fatalf("rpc never reached the relay: %#v", r.recorded())
}

// TestWS_TokenRequired verifies the token gate on the websocket.
func TestWS_TokenRequired(t *testing.T) {
	r := &fakeRelay{}
	ts := newWebTest(t, config.Web{Token: "secret"}, r)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if _, resp, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatalf("expected rejection without token")
	} else if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %#v", resp)
	}

	conn := dialWS(t, ts, "?token=secret")
	var st serverStatus
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("authorized dial failed: %v", err)
	}
}

// TestWS_DisconnectForwarded verifies closing the phone socket notifies
// the relay.
func TestWS_DisconnectForwarded(t *testing.T) {
	r := &fakeRelay{connected: true}
	conn := dialWS(t, newWebTest(t, config.Web{}, r), "")

	var st serverStatus
	conn.ReadJSON(&st)
	conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, c := range r.recorded() {
			if c.kind == "client" && c.state == "disconnected" {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("disconnect never forwarded: %#v", r.recorded())
}

// TestWS_SecondClientRejected verifies only one phone drives at a time.
func TestWS_SecondClientRejected(t *testing.T) {
	r := &fakeRelay{connected: true}
	ts := newWebTest(t, config.Web{}, r)

	first := dialWS(t, ts, "")
	var st serverStatus
	first.ReadJSON(&st)

	second := dialWS(t, ts, "")
	var msg uiMessage
	if err := second.ReadJSON(&msg); err == nil {
		if msg.T != "error" {
			t.Fatalf("expected error frame, got %#v", msg)
		}
	}
}

// TestHealth_ReportsRelayState verifies the liveness endpoint shape.
func TestHealth_ReportsRelayState(t *testing.T) {
	r := &fakeRelay{connected: true, caps: relay.Capabilities{Mouse: true}}
	ts := newWebTest(t, config.Web{}, r)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		OK                bool            `json:"ok"`
		RelayConnected    bool            `json:"relay_connected"`
		RelayCapabilities map[string]bool `json:"relay_capabilities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || !body.RelayConnected || !body.RelayCapabilities["mouse"] {
		t.Fatalf("unexpected health body: %#v", body)
	}
}

// TestDiag_IncludesAddressing verifies the diag endpoint carries the
// addressing a LAN setup needs.
func TestDiag_IncludesAddressing(t *testing.T) {
	r := &fakeRelay{connected: true, status: &relay.Status{Mouse: true}}
	ts := newWebTest(t, config.Web{Host: "0.0.0.0", Port: 5000, RelayHost: "127.0.0.1", RelayPort: 8765, Token: "x"}, r)

	resp, err := http.Get(ts.URL + "/diag")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["relay_host"] != "127.0.0.1" || body["token_enabled"] != true {
		t.Fatalf("unexpected diag body: %#v", body)
	}
	if _, ok := body["relay_last_status"]; !ok {
		t.Fatalf("expected last status in diag: %#v", body)
	}
}
