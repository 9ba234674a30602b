package modem

import (
	"log/slog"
	"time"

	"i4.energy/across/oocsigw/at"
)

// Config holds the settings used by New. Build it with NewConfigBuilder.
type Config struct {
	dialer Dialer
	clock  Clock
	logger *slog.Logger

	// settleDelay is the minimum spacing the modem needs between commands.
	settleDelay time.Duration
	// pollInterval is the pause after a read that returned no data.
	pollInterval time.Duration
	// commandTimeout is the default wait for a plain OK.
	commandTimeout time.Duration
	// resetTimeout bounds the wait for "ready" after AT+RESTORE.
	resetTimeout time.Duration
	// statusTimeout bounds the wait for the STATUS: line.
	statusTimeout time.Duration
	// startTimeout bounds the wait for the TCP connection to open.
	startTimeout time.Duration
	// sessionSettle is the pause between opening the TCP connection and
	// sending the identity line.
	sessionSettle time.Duration
	// ipdTimeout bounds the extraction of a +IPD frame once data arrived.
	ipdTimeout time.Duration
	// bufferSize caps the receive line buffer.
	bufferSize int
}

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.clock == nil {
		c.clock = SystemClock{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.settleDelay == 0 {
		c.settleDelay = 10 * time.Millisecond
	}
	if c.pollInterval == 0 {
		c.pollInterval = 5 * time.Millisecond
	}
	if c.commandTimeout == 0 {
		c.commandTimeout = 100 * time.Millisecond
	}
	if c.resetTimeout == 0 {
		c.resetTimeout = 5 * time.Second
	}
	if c.statusTimeout == 0 {
		c.statusTimeout = time.Second
	}
	if c.startTimeout == 0 {
		c.startTimeout = 10 * time.Second
	}
	if c.sessionSettle == 0 {
		c.sessionSettle = 500 * time.Millisecond
	}
	if c.ipdTimeout == 0 {
		c.ipdTimeout = 500 * time.Millisecond
	}
	if c.bufferSize == 0 {
		c.bufferSize = at.DefaultBufferSize
	}
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

func (b *ConfigBuilder) WithClock(c Clock) *ConfigBuilder {
	b.config.clock = c
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.logger = l
	return b
}

func (b *ConfigBuilder) WithSettleDelay(d time.Duration) *ConfigBuilder {
	b.config.settleDelay = d
	return b
}

func (b *ConfigBuilder) WithPollInterval(d time.Duration) *ConfigBuilder {
	b.config.pollInterval = d
	return b
}

func (b *ConfigBuilder) WithCommandTimeout(d time.Duration) *ConfigBuilder {
	b.config.commandTimeout = d
	return b
}

func (b *ConfigBuilder) WithResetTimeout(d time.Duration) *ConfigBuilder {
	b.config.resetTimeout = d
	return b
}

func (b *ConfigBuilder) WithStatusTimeout(d time.Duration) *ConfigBuilder {
	b.config.statusTimeout = d
	return b
}

func (b *ConfigBuilder) WithStartTimeout(d time.Duration) *ConfigBuilder {
	b.config.startTimeout = d
	return b
}

func (b *ConfigBuilder) WithSessionSettle(d time.Duration) *ConfigBuilder {
	b.config.sessionSettle = d
	return b
}

func (b *ConfigBuilder) WithFrameTimeout(d time.Duration) *ConfigBuilder {
	b.config.ipdTimeout = d
	return b
}

func (b *ConfigBuilder) WithBufferSize(n int) *ConfigBuilder {
	b.config.bufferSize = n
	return b
}

// Build validates the collected settings and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
