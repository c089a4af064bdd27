// Package relay implements the line-delimited JSON protocol between the
// control and injection processes, and the client half of the session.
package relay

// Window identifies the window focus-lock targets. A zero handle means no
// window is selected.
type Window struct {
	Handle uint64 `json:"hwnd"`
	PID    uint32 `json:"pid"`
	Title  string `json:"title"`
}

// Status is the device-state snapshot produced by the injection process on
// every handshake and state-mutating RPC. Each snapshot fully replaces the
// previous one.
type Status struct {
	Mouse          bool   `json:"mouse"`
	Keyboard       bool   `json:"keyboard"`
	Gamepad        bool   `json:"gamepad"`
	GamepadEnabled bool   `json:"gamepad_enabled"`
	GamepadError   string `json:"gamepad_error,omitempty"`
	InputMode      int    `json:"input_mode"`
	KbmCameraDrag  bool   `json:"kbm_camera_drag"`
	SelectedWindow Window `json:"selected_window"`
	FocusLock      bool   `json:"focus_lock"`
}

// EventData carries the payload of a single input event.
type EventData struct {
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Button string  `json:"button,omitempty"`
	Down   *bool   `json:"down,omitempty"`
	Name   string  `json:"name,omitempty"`
	Which  string  `json:"which,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// Params carries RPC parameters.
type Params struct {
	Enabled *bool `json:"enabled,omitempty"`
	Mode    *int  `json:"mode,omitempty"`
}

// Message is a single relay frame. The discriminant T selects which of the
// optional fields are meaningful; status frames carry the snapshot fields
// inline via the embedded Status.
type Message struct {
	T string `json:"t"`
	// hello
	V int `json:"v,omitempty"`
	// client
	State string            `json:"state,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
	// input
	E string     `json:"e,omitempty"`
	D *EventData `json:"d,omitempty"`
	// rpc / rpc_result
	ID     string  `json:"id,omitempty"`
	M      string  `json:"m,omitempty"`
	P      *Params `json:"p,omitempty"`
	OK     *bool   `json:"ok,omitempty"`
	Result *Status `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`

	*Status
}

// BoolValue unwraps an optional boolean, substituting a default when absent.
func BoolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
