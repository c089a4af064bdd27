package relay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// ErrEmbeddedNewline indicates a frame whose encoding contains the line
// separator; such frames are rejected rather than escaped differently.
var ErrEmbeddedNewline = errors.New("relay: message encoding contains a newline")

// Writer frames messages onto a byte stream. Writes are serialized so one
// frame is never interleaved with another writer's output.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps a byte stream for framed message writes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes one message, appends the line terminator, and sends it as a
// single write.
func (w *Writer) Write(m *Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if bytes.IndexByte(data, '\n') >= 0 {
		return ErrEmbeddedNewline
	}
	data = append(data, '\n')
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.w.Write(data)
	return err
}

// Reader yields complete messages from a byte stream, buffering partial
// lines across reads. Lines that do not decode to a tagged message are
// dropped and counted.
type Reader struct {
	br      *bufio.Reader
	partial []byte
	dropped atomic.Uint64
}

// NewReader wraps a byte stream for framed message reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 4096)}
}

// Read returns the next complete message. A read error (including a
// deadline timeout) preserves any partially received line for the next call.
func (r *Reader) Read() (*Message, error) {
	for {
		chunk, err := r.br.ReadBytes('\n')
		if err != nil {
			r.partial = append(r.partial, chunk...)
			return nil, err
		}
		line := chunk
		if len(r.partial) > 0 {
			line = append(r.partial, chunk...)
			r.partial = nil
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var m Message
		if err := json.Unmarshal(line, &m); err != nil || m.T == "" {
			r.dropped.Add(1)
			continue
		}
		return &m, nil
	}
}

// Dropped reports how many malformed lines this reader has discarded.
func (r *Reader) Dropped() uint64 {
	return r.dropped.Load()
}
