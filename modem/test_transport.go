package modem

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"i4.energy/across/oocsigw/at"
)

// TestTransport is a test helper that simulates a modem behind a
// non-blocking serial port. Reads return whatever bytes are pending, or
// zero bytes when there are none. Replies registered with Reply become
// readable only after the matching command is written, the way a real
// modem answers.
type TestTransport struct {
	mu       sync.Mutex
	pending  []byte
	writes   []string
	replies  []testReply
	chunk    int
	writeErr error
	closed   bool
}

type testReply struct {
	cmd  string
	data string
	used bool
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{}
}

// Reply makes data readable after the next write of cmd. cmd is compared
// without the trailing CRLF. Replies for the same command are used in the
// order they were registered.
func (t *TestTransport) Reply(cmd, data string) *TestTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies = append(t.replies, testReply{cmd: cmd, data: data})
	return t
}

// SendData queues data to be read by the transport.
// This simulates unsolicited output from the modem.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.pending = append(t.pending, data...)
	}
}

// SetChunkSize limits how many bytes a single Read returns.
func (t *TestTransport) SetChunkSize(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chunk = n
}

// FailWrites makes every following Write return err.
func (t *TestTransport) FailWrites(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

// Writes returns every chunk written so far.
func (t *TestTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.writes...)
}

// Written returns all written bytes as one string.
func (t *TestTransport) Written() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.writes, "")
}

// Pending returns the number of bytes not yet read.
func (t *TestTransport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *TestTransport) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.EOF
	}

	n := len(t.pending)
	if t.chunk > 0 && n > t.chunk {
		n = t.chunk
	}
	n = copy(p, t.pending[:n])
	t.pending = t.pending[n:]
	return n, nil
}

func (t *TestTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	if t.writeErr != nil {
		return 0, t.writeErr
	}

	t.writes = append(t.writes, string(p))
	line := strings.TrimSuffix(string(p), at.CRLF)
	for i := range t.replies {
		r := &t.replies[i]
		if !r.used && r.cmd == line {
			r.used = true
			t.pending = append(t.pending, r.data...)
			break
		}
	}
	return len(p), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// TestDialer hands out a fixed transport.
type TestDialer struct {
	Transport Transport
	Err       error
}

func (d TestDialer) Dial(_ context.Context) (Transport, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Transport, nil
}

// TestClock is a virtual clock. Sleep advances it instantly, so protocol
// timeouts elapse without real waiting.
type TestClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewTestClock() *TestClock {
	return &TestClock{now: time.Unix(0, 0)}
}

func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *TestClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
