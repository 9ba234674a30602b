package modem

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"i4.energy/across/oocsigw/at"
)

// engine runs the half-duplex command/response exchange over one transport.
// It owns the receive line buffer. It is not safe for concurrent use; the
// Modem serializes every call behind its mutex.
type engine struct {
	transport Transport
	clock     Clock
	logger    *slog.Logger
	buf       *at.LineBuffer
	scratch   []byte

	settle time.Duration
	poll   time.Duration
}

func newEngine(t Transport, config Config, logger *slog.Logger) *engine {
	return &engine{
		transport: t,
		clock:     config.clock,
		logger:    logger,
		buf:       at.NewLineBuffer(config.bufferSize),
		scratch:   make([]byte, 256),
		settle:    config.settleDelay,
		poll:      config.pollInterval,
	}
}

// fill moves whatever the transport has pending into the line buffer and
// returns the number of bytes read.
func (e *engine) fill() int {
	n, err := e.transport.Read(e.scratch)
	if n > 0 {
		e.buf.Append(e.scratch[:n])
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrDeadlineExceeded) {
		e.logger.Debug("read failed", "error", err)
	}
	return n
}

// idle backs off for one poll interval when the last read produced nothing.
func (e *engine) idle(n int) {
	if n == 0 {
		e.clock.Sleep(e.poll)
	}
}

// discard drops residual input so a new command starts from a clean slate.
func (e *engine) discard() {
	for i := 0; i < 16; i++ {
		if e.fill() == 0 {
			break
		}
	}
	e.buf.Clear()
}

func (e *engine) write(cmd string) bool {
	e.clock.Sleep(e.settle)
	e.discard()

	if _, err := e.transport.Write([]byte(cmd + at.CRLF)); err != nil {
		e.logger.Warn("write command failed", "command", commandName(cmd), "error", err)
		return false
	}
	e.logger.Debug("command sent", "command", commandName(cmd))
	return true
}

// Send writes cmd without waiting for any response.
func (e *engine) Send(cmd string) bool {
	return e.write(cmd)
}

// SendAndAwait writes cmd and waits up to timeout for a CRLF line containing
// expected. When expected is "OK" an ERROR line ends the wait early with
// false. An empty expected behaves like Send.
func (e *engine) SendAndAwait(cmd, expected string, timeout time.Duration) bool {
	if !e.write(cmd) {
		return false
	}
	if expected == "" {
		return true
	}

	start := e.clock.Now()
	for e.clock.Now().Sub(start) <= timeout {
		n := e.fill()
		for {
			line, ok := e.buf.ExtractLine(at.CRLF)
			if !ok {
				break
			}
			if strings.Contains(line, expected) {
				e.buf.Clear()
				return true
			}
			if expected == at.OK && strings.Contains(line, at.ERROR) {
				e.logger.Debug("command rejected", "command", commandName(cmd), "line", line)
				return false
			}
			e.logger.Debug("discarding line", "line", line, "type", at.Classify(line))
		}
		e.idle(n)
	}

	e.logger.Debug("command timed out", "command", commandName(cmd), "expected", expected, "timeout", timeout)
	return false
}

// AwaitTagged waits up to timeout for an LF-terminated line containing tag
// and returns it without the trailing CR. Lines that do not carry the tag are
// dropped. If the deadline passes, the raw buffer is returned when it holds
// the tag without a terminating newline. The buffer is always cleared.
func (e *engine) AwaitTagged(tag string, timeout time.Duration) string {
	defer e.buf.Clear()

	start := e.clock.Now()
	for e.clock.Now().Sub(start) <= timeout {
		n := e.fill()
		for {
			line, ok := e.buf.ExtractLine(at.LF)
			if !ok {
				break
			}
			if strings.Contains(line, tag) {
				return strings.TrimSuffix(line, "\r")
			}
			e.logger.Debug("discarding line", "line", line, "type", at.Classify(line))
		}
		e.idle(n)
	}

	if e.buf.Contains(tag) {
		return e.buf.String()
	}
	return ""
}

// commandName strips arguments so credentials never reach the log.
func commandName(cmd string) string {
	if i := strings.IndexByte(cmd, '='); i >= 0 {
		return cmd[:i]
	}
	if len(cmd) > 32 {
		return cmd[:32] + "..."
	}
	return cmd
}
