package modem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/oocsigw/at"
)

// Modem represents an ESP8266 Wi-Fi modem that communicates via AT commands.
//
// The Modem owns the transport and the receive buffer. Synchronous
// operations (Init, JoinWifi, IsWifiConnected, OpenSession, ...) hold an
// exclusive lock for their whole exchange. The asynchronous path (Poll and
// Loop) only runs when it can take that lock without waiting, so a
// notification is never extracted in the middle of a command exchange.
type Modem struct {
	// mu serializes all access to the transport and the engine
	mu     sync.Mutex
	engine *engine

	// transport provides the physical connection to the modem (serial, fake, ...)
	transport Transport
	// config contains the modem configuration settings
	config Config
	logger *slog.Logger

	// state is only written with mu held; reads are lock free
	state atomic.Int32
	// closed indicates if the modem has been shut down
	closed atomic.Bool
	// loopRunning indicates if the Loop is currently running
	loopRunning atomic.Bool
}

// FrameHandler receives each +IPD notification frame extracted by Loop.
type FrameHandler func(frame string)

// New creates a new Modem instance with the given configuration and
// establishes the transport connection. The modem starts in
// StateUninitialized; call Init to run the reset handshake.
func New(ctx context.Context, config Config) (*Modem, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial modem: %w", err)
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	logger := config.logger.With("component", "modem")
	return &Modem{
		engine:    newEngine(transport, config, logger),
		transport: transport,
		config:    config,
		logger:    logger,
	}, nil
}

// State returns the current connection progress.
func (m *Modem) State() State {
	return State(m.state.Load())
}

// advance moves the state forward to s. It never moves backward.
func (m *Modem) advance(s State) {
	if cur := m.State(); s > cur {
		m.state.Store(int32(s))
		m.logger.Info("state changed", "from", cur, "to", s)
	}
}

// lock takes exclusive ownership of the stream. It reports false once the
// modem is closed.
func (m *Modem) lock() bool {
	m.mu.Lock()
	if m.closed.Load() {
		m.mu.Unlock()
		return false
	}
	return true
}

// SendAndAwait writes cmd and waits for a response line containing expected.
// An empty expected returns true right after the write.
func (m *Modem) SendAndAwait(cmd, expected string, timeout time.Duration) bool {
	if !m.lock() {
		return false
	}
	defer m.mu.Unlock()
	return m.engine.SendAndAwait(cmd, expected, timeout)
}

// AwaitTagged returns the next line containing tag, or "" on timeout.
func (m *Modem) AwaitTagged(tag string, timeout time.Duration) string {
	if !m.lock() {
		return ""
	}
	defer m.mu.Unlock()
	return m.engine.AwaitTagged(tag, timeout)
}

// Init restores the factory settings, waits for the module to reboot and
// turns off command echo. On success the modem becomes StateModemReady.
func (m *Modem) Init() bool {
	if !m.lock() {
		return false
	}
	defer m.mu.Unlock()

	if !m.engine.SendAndAwait(at.CmdRestore, at.Ready, m.config.resetTimeout) {
		m.logger.Warn("modem did not report ready after restore")
		return false
	}
	if !m.engine.SendAndAwait(at.CmdEchoOff, at.OK, m.config.commandTimeout) {
		m.logger.Warn("could not disable echo")
		return false
	}

	m.advance(StateModemReady)
	return true
}

// JoinWifi switches the module to station mode and issues the join command
// without waiting for the association to finish. Use IsWifiConnected to
// learn the outcome. It reports whether the join command was written.
func (m *Modem) JoinWifi(ssid, password string) bool {
	if !m.lock() {
		return false
	}
	defer m.mu.Unlock()

	if m.State() < StateModemReady {
		m.logger.Warn("join Wi-Fi skipped", "state", m.State())
		return false
	}

	if !m.engine.SendAndAwait(at.CmdStationMode, at.OK, m.config.commandTimeout) {
		m.logger.Warn("station mode not acknowledged")
	}
	return m.engine.Send(at.JoinAP(ssid, password))
}

// IsWifiConnected queries the connection status. A missing status line or
// the "no connection" code reports false.
func (m *Modem) IsWifiConnected() bool {
	if !m.lock() {
		return false
	}
	defer m.mu.Unlock()
	return m.wifiConnected()
}

func (m *Modem) wifiConnected() bool {
	if !m.engine.Send(at.CmdStatus) {
		return false
	}
	status := m.engine.AwaitTagged(at.Status, m.config.statusTimeout)

	// Drain the trailing OK.
	m.engine.AwaitTagged(at.OK, m.config.commandTimeout)

	if status == "" || strings.Contains(status, at.StatusNoConnection) {
		m.logger.Debug("station not connected", "status", status)
		return false
	}

	if m.State() == StateModemReady {
		m.advance(StateWifiConnected)
	}
	return true
}

// OpenSession opens the TCP connection to the broker and sends the identity
// line. On success the modem becomes StateBrokerConnected.
func (m *Modem) OpenSession(host string, port int, identity string) bool {
	if !m.lock() {
		return false
	}
	defer m.mu.Unlock()

	if m.State() < StateModemReady {
		m.logger.Warn("open session skipped", "state", m.State())
		return false
	}

	if !m.engine.SendAndAwait(at.StartTCP(host, port), at.OK, m.config.startTimeout) {
		m.logger.Warn("broker connection failed", "host", host, "port", port)
		return false
	}
	m.config.clock.Sleep(m.config.sessionSettle)

	if !m.sendPayload(identity) {
		return false
	}

	m.advance(StateBrokerConnected)
	return true
}

// SendPayload announces and writes one text line on the open connection.
func (m *Modem) SendPayload(line string) bool {
	if !m.lock() {
		return false
	}
	defer m.mu.Unlock()
	return m.sendPayload(line)
}

// Deliver writes line only when a broker session is open and the station
// currently reports a Wi-Fi connection. Otherwise it silently does nothing
// and returns false.
func (m *Modem) Deliver(line string) bool {
	if !m.lock() {
		return false
	}
	defer m.mu.Unlock()

	if m.State() < StateBrokerConnected {
		return false
	}
	if !m.wifiConnected() {
		return false
	}
	return m.sendPayload(line)
}

// sendPayload terminates line with CRLF and announces that payload plus the
// CRLF the engine appends when writing it.
func (m *Modem) sendPayload(line string) bool {
	payload := line + at.CRLF
	if !m.engine.Send(at.SendLength(len(payload) + len(at.CRLF))) {
		return false
	}
	return m.engine.Send(payload)
}

// Poll checks for an inbound +IPD notification without waiting for the
// stream. When a synchronous exchange is in flight, or no complete line has
// arrived yet, it returns "". Once a line is buffered it extracts the
// notification frame, giving it up to the configured frame timeout.
func (m *Modem) Poll() string {
	if m.closed.Load() || !m.mu.TryLock() {
		return ""
	}
	defer m.mu.Unlock()

	m.engine.fill()
	if !m.engine.buf.HasLine(at.LF) {
		return ""
	}
	return m.engine.AwaitTagged(at.IPD, m.config.ipdTimeout)
}

// Loop polls for inbound notifications and hands every frame to handle.
// It runs until the context is cancelled or the modem is closed. Only one
// Loop may run at a time.
//
// Usage:
//
//	m, err := New(ctx, config)
//	if err != nil { return err }
//
//	go m.Loop(ctx, func(frame string) { ... })
func (m *Modem) Loop(ctx context.Context, handle FrameHandler) error {
	if !m.loopRunning.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer m.loopRunning.Store(false)

	ticker := time.NewTicker(m.config.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if m.closed.Load() {
				return ErrAlreadyClosed
			}
			if frame := m.Poll(); frame != "" {
				handle(frame)
			}
		}
	}
}

// Close releases the transport. It waits for an in-flight exchange to
// finish. After calling Close(), the modem cannot be reused.
func (m *Modem) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transport.Close()
}

func (m *Modem) String() string {
	return fmt.Sprintf("Modem{state: %s}", m.State())
}
