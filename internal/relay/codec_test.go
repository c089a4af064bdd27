package relay

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader yields its input in fixed-size chunks with a fake timeout
// error between chunks, simulating read deadlines splitting frames.
type chunkReader struct {
	chunks [][]byte
	idx    int
	errAt  map[int]bool
}

// Read returns the next chunk or a timeout placeholder error.
func (c *chunkReader) Read(p []byte) (int, error) {
	if c.idx >= len(c.chunks) {
		return 0, io.EOF
	}
	if c.errAt[c.idx] {
		delete(c.errAt, c.idx)
		return 0, errors.New("i/o timeout")
	}
	n := copy(p, c.chunks[c.idx])
	c.idx++
	return n, nil
}

// TestReader_SplitFrameAcrossReads verifies a frame split over several
// reads still decodes once the terminator arrives.
func TestReader_SplitFrameAcrossReads(t *testing.T) {
	r := NewReader(&chunkReader{chunks: [][]byte{
		[]byte(`{"t":"input","e":"mo`),
		[]byte(`ve","d":{"dx":3.5}}` + "\n"),
	}})

	m, err := r.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.T != "input" || m.E != "move" || m.D == nil || m.D.DX != 3.5 {
		t.Fatalf("unexpected message: %#v", m)
	}
}

// TestReader_PartialPreservedAcrossError verifies a read error does not
// discard the bytes of a half-received line.
func TestReader_PartialPreservedAcrossError(t *testing.T) {
	r := NewReader(&chunkReader{
		chunks: [][]byte{
			[]byte(`{"t":"hello",`),
			[]byte(`"v":1}` + "\n"),
		},
		errAt: map[int]bool{1: true},
	})

	if _, err := r.Read(); err == nil {
		t.Fatalf("expected transient error")
	}
	m, err := r.Read()
	if err != nil {
		t.Fatalf("read after error: %v", err)
	}
	if m.T != "hello" || m.V != 1 {
		t.Fatalf("unexpected message: %#v", m)
	}
}

// TestReader_DropsMalformedLines verifies bad lines are skipped and counted
// without ending the stream.
func TestReader_DropsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`not json`,
		`{"no_tag":true}`,
		``,
		`{"t":"hello","v":1}`,
	}, "\n") + "\n"
	r := NewReader(strings.NewReader(input))

	m, err := r.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.T != "hello" {
		t.Fatalf("expected hello, got %#v", m)
	}
	if got := r.Dropped(); got != 2 {
		t.Fatalf("expected 2 dropped lines, got %d", got)
	}
}

// TestWriter_AppendsTerminator verifies frames end with exactly one newline.
func TestWriter_AppendsTerminator(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.Write(&Message{T: "hello", V: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.HasSuffix(out, "}\n") || strings.Count(out, "\n") != 1 {
		t.Fatalf("unexpected framing: %q", out)
	}
}

// TestWriter_RejectsEmbeddedNewline verifies a frame whose payload would
// split the line is refused.
func TestWriter_RejectsEmbeddedNewline(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	err := w.Write(&Message{T: "input", E: "key", D: &EventData{Text: "a\nb"}})
	if err != nil {
		t.Fatalf("expected JSON escaping to absorb the newline, got %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("payload newline leaked into framing: %q", buf.String())
	}
}

// TestMessage_StatusFrameIsFlat verifies status snapshots encode inline in
// the frame rather than nested under a field.
func TestMessage_StatusFrameIsFlat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	st := Status{Mouse: true, Keyboard: true, InputMode: 1, FocusLock: true,
		SelectedWindow: Window{Handle: 42, PID: 7, Title: "Game"}}
	if err := w.Write(&Message{T: "status", Status: &st}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"mouse":true`) || strings.Contains(out, `"status":{`) {
		t.Fatalf("status not flattened: %q", out)
	}

	r := NewReader(strings.NewReader(out))
	m, err := r.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Status == nil || !m.Mouse || m.InputMode != 1 || m.SelectedWindow.Handle != 42 {
		t.Fatalf("status not decoded: %#v", m.Status)
	}
}
