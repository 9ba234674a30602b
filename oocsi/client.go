package oocsi

//go:generate go tool mockgen -source=client.go -destination=mock_link.go -package=oocsi

import (
	"context"
	"errors"
	"log/slog"

	"i4.energy/across/oocsigw/modem"
)

// Link is the part of the modem the client drives. *modem.Modem
// implements it.
type Link interface {
	OpenSession(host string, port int, identity string) bool
	Deliver(line string) bool
	Loop(ctx context.Context, handle modem.FrameHandler) error
}

// Client speaks the OOCSI text protocol over a Link and keeps the last
// received message.
type Client struct {
	link      Link
	store     Store
	logger    *slog.Logger
	onMessage func(Message)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMessageHandler registers fn to be called with every stored message.
// fn runs on the receive loop and must not block.
func WithMessageHandler(fn func(Message)) ClientOption {
	return func(c *Client) { c.onMessage = fn }
}

func NewClient(link Link, opts ...ClientOption) *Client {
	c := &Client{
		link:   link,
		logger: slog.New(slog.DiscardHandler),
	}
	c.store.Reset()
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "oocsi")
	return c
}

// Connect opens the broker connection and joins as name.
func (c *Client) Connect(server, name string) bool {
	ok := c.link.OpenSession(server, DefaultPort, JoinLine(name, CapabilityJSON))
	if ok {
		c.logger.Info("joined broker", "server", server, "name", name)
	} else {
		c.logger.Warn("could not join broker", "server", server)
	}
	return ok
}

// Send publishes {key: v} on channel. It reports false, without writing,
// when the broker session or Wi-Fi is down.
func (c *Client) Send(channel, key string, v Value) bool {
	return c.deliver(PublishLine(channel, key, v))
}

func (c *Client) SendMessage(channel string, msg Message) bool {
	return c.deliver(PublishMessageLine(channel, msg))
}

func (c *Client) Subscribe(channel string) bool {
	return c.deliver(SubscribeLine(channel))
}

func (c *Client) Unsubscribe(channel string) bool {
	return c.deliver(UnsubscribeLine(channel))
}

func (c *Client) deliver(line string) bool {
	if c.link.Deliver(line) {
		return true
	}
	c.logger.Debug("outbound skipped", "command", commandWord(line))
	return false
}

// HandleFrame decodes one notification frame into the message slot.
// Blank frames, keep-alives and empty objects leave the slot alone; a
// malformed payload empties it.
func (c *Client) HandleFrame(frame string) {
	msg, kind, err := DecodeFrame(frame)
	switch {
	case errors.Is(err, ErrMalformedPayload):
		c.logger.Warn("dropping malformed payload", "error", err)
		c.store.Reset()
		return
	case kind != FramePayload || len(msg) == 0:
		return
	}

	c.store.Set(msg)
	if c.onMessage != nil {
		c.onMessage(msg.Clone())
	}
}

// Check reports whether a message arrived since the last Check, and clears
// that flag.
func (c *Client) Check() bool {
	_, fresh := c.store.Take()
	return fresh
}

// Get returns the value under key in the last message as text, or def.
func (c *Client) Get(key, def string) string {
	return c.store.GetText(key, def)
}

func (c *Client) Store() *Store {
	return &c.store
}

// Run receives notification frames until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	return c.link.Loop(ctx, c.HandleFrame)
}

func commandWord(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			return line[:i]
		}
	}
	return line
}
