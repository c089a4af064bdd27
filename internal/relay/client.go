package relay

import (
	"errors"
	"log"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	dialTimeout    = 1500 * time.Millisecond
	readTimeout    = 500 * time.Millisecond
	reconnectDelay = 500 * time.Millisecond
)

var errNotConnected = errors.New("relay: not connected")

// Capabilities summarizes what the injection process can currently drive.
type Capabilities struct {
	Mouse    bool
	Keyboard bool
	Gamepad  bool
}

// Result is the outcome of a synchronous RPC call.
type Result struct {
	OK     bool
	Error  string
	Result *Status
}

// Client owns the control process's outbound relay connection. It reconnects
// on failure, forwards state and input frames, and correlates RPC results
// with their pending requests.
type Client struct {
	addr string

	mu          sync.Mutex // guards conn, wr, rd
	conn        net.Conn
	wr          *Writer
	rd          *Reader
	droppedPrev uint64

	connected atomic.Bool

	pendingMu sync.Mutex
	pending   map[string]chan *Message
	nextID    uint64

	statusMu   sync.RWMutex
	lastStatus *Status

	stop chan struct{}
	done chan struct{}
}

// NewClient creates a relay client for the given host address. Call Start to
// begin connecting.
func NewClient(addr string) *Client {
	return &Client{
		addr:    addr,
		pending: make(map[string]chan *Message),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the reconnect loop.
func (c *Client) Start() {
	go c.run()
}

// Stop terminates the reconnect loop and closes the connection.
func (c *Client) Stop() {
	close(c.stop)
	c.closeConn()
	<-c.done
}

// Connected reports whether the relay session is up.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Capabilities derives device availability from the latest status snapshot.
func (c *Client) Capabilities() Capabilities {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	if c.lastStatus == nil {
		return Capabilities{}
	}
	return Capabilities{
		Mouse:    c.lastStatus.Mouse,
		Keyboard: c.lastStatus.Keyboard,
		Gamepad:  c.lastStatus.Gamepad,
	}
}

// LastStatus returns the most recent status snapshot, if one has arrived.
func (c *Client) LastStatus() (Status, bool) {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	if c.lastStatus == nil {
		return Status{}, false
	}
	return *c.lastStatus, true
}

// Dropped reports malformed frames discarded across all connections.
func (c *Client) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.droppedPrev
	if c.rd != nil {
		n += c.rd.Dropped()
	}
	return n
}

// SendClientState forwards the front end's connection state to the host.
// Silently does nothing while disconnected.
func (c *Client) SendClientState(state string, meta map[string]string) {
	_ = c.send(&Message{T: "client", State: state, Meta: meta})
}

// SendInput forwards one input event to the host, dropping it while
// disconnected.
func (c *Client) SendInput(event string, d *EventData) {
	_ = c.send(&Message{T: "input", E: event, D: d})
}

// Call issues an RPC and blocks until a matching result arrives or the
// timeout elapses. Safe for concurrent callers; each waits on its own handle.
func (c *Client) Call(method string, params *Params, timeout time.Duration) Result {
	if !c.connected.Load() {
		return Result{Error: "host_not_connected"}
	}

	id := strconv.FormatUint(atomic.AddUint64(&c.nextID, 1), 10)
	ch := make(chan *Message, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	if err := c.send(&Message{T: "rpc", ID: id, M: method, P: params}); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return Result{Error: "send_failed"}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case m := <-ch:
		return resultFrom(m)
	case <-timer.C:
	}

	// Whichever path removes the pending entry owns the outcome; a result
	// that raced the timer has already been buffered on the channel.
	c.pendingMu.Lock()
	_, pending := c.pending[id]
	if pending {
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()
	if !pending {
		return resultFrom(<-ch)
	}
	return Result{Error: "timeout"}
}

// resultFrom converts an rpc_result frame into a Result.
func resultFrom(m *Message) Result {
	return Result{OK: BoolValue(m.OK, false), Error: m.Error, Result: m.Result}
}

// run is the reconnect loop; it only terminates on Stop.
func (c *Client) run() {
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			return
		default:
		}
		if err := c.connectOnce(); err != nil {
			c.closeConn()
			if !c.sleep(reconnectDelay) {
				return
			}
			continue
		}
		c.receiveLoop()
		c.closeConn()
		log.Printf("relay: host disconnected; reconnecting")
		if !c.sleep(reconnectDelay) {
			return
		}
	}
}

// connectOnce dials the host, performs the hello handshake, and caches the
// handshake status reply.
func (c *Client) connectOnce() error {
	conn, err := net.DialTimeout("tcp", c.addr, dialTimeout)
	if err != nil {
		return err
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	c.mu.Lock()
	c.conn = conn
	c.wr = NewWriter(conn)
	c.rd = NewReader(conn)
	c.mu.Unlock()
	c.connected.Store(true)

	if err := c.send(&Message{T: "hello", V: 1}); err != nil {
		return err
	}
	if msg := c.readOne(dialTimeout); msg != nil {
		c.handleIncoming(msg)
	}
	log.Printf("relay: connected to host %s", c.addr)
	return nil
}

// receiveLoop dispatches incoming frames until the socket errors or closes.
func (c *Client) receiveLoop() {
	for c.connected.Load() {
		select {
		case <-c.stop:
			return
		default:
		}
		c.mu.Lock()
		conn, rd := c.conn, c.rd
		c.mu.Unlock()
		if conn == nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		msg, err := rd.Read()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return
		}
		c.handleIncoming(msg)
	}
}

// readOne reads a single frame with a bounded deadline, returning nil on
// any failure.
func (c *Client) readOne(timeout time.Duration) *Message {
	c.mu.Lock()
	conn, rd := c.conn, c.rd
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	msg, err := rd.Read()
	if err != nil {
		return nil
	}
	return msg
}

// handleIncoming routes a received frame to the status cache or its pending
// request.
func (c *Client) handleIncoming(m *Message) {
	switch m.T {
	case "status":
		if m.Status == nil {
			return
		}
		st := *m.Status
		c.statusMu.Lock()
		c.lastStatus = &st
		c.statusMu.Unlock()
	case "rpc_result":
		c.pendingMu.Lock()
		ch, ok := c.pending[m.ID]
		if ok {
			delete(c.pending, m.ID)
			ch <- m
		}
		c.pendingMu.Unlock()
	}
}

// send writes one frame, marking the session disconnected on failure.
func (c *Client) send(m *Message) error {
	c.mu.Lock()
	wr := c.wr
	c.mu.Unlock()
	if wr == nil || !c.connected.Load() {
		return errNotConnected
	}
	if err := wr.Write(m); err != nil {
		c.connected.Store(false)
		return err
	}
	return nil
}

// closeConn tears down the current connection and carries the reader's drop
// count forward.
func (c *Client) closeConn() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.wr = nil
	if c.rd != nil {
		c.droppedPrev += c.rd.Dropped()
		c.rd = nil
	}
	c.mu.Unlock()
	c.connected.Store(false)
	if conn != nil {
		_ = conn.Close()
	}
}

// sleep waits for the backoff period, returning false when Stop interrupts.
func (c *Client) sleep(d time.Duration) bool {
	select {
	case <-c.stop:
		return false
	case <-time.After(d):
		return true
	}
}
