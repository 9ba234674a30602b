package oocsi_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"go.uber.org/mock/gomock"
	"i4.energy/across/oocsigw/modem"
	"i4.energy/across/oocsigw/oocsi"
)

func TestClientWithMockLink(t *testing.T) {
	t.Run("Connect joins with the JSON capability", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		link := oocsi.NewMockLink(ctrl)
		link.EXPECT().OpenSession("super.oocsi.net", 4444, "dev1(JSON)").Return(true)

		if !oocsi.NewClient(link).Connect("super.oocsi.net", "dev1") {
			t.Error("expected Connect to succeed")
		}
	})

	t.Run("Outbound operations go through Deliver", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		link := oocsi.NewMockLink(ctrl)
		gomock.InOrder(
			link.EXPECT().Deliver(`sendjson room1 {"temp": 23}`).Return(true),
			link.EXPECT().Deliver("subscribe room1").Return(true),
			link.EXPECT().Deliver("unsubscribe room1").Return(true),
			link.EXPECT().Deliver(`sendjson room1 {"a": true}`).Return(false),
		)

		c := oocsi.NewClient(link)
		if !c.Send("room1", "temp", oocsi.Int(23)) {
			t.Error("Send: expected true")
		}
		if !c.Subscribe("room1") {
			t.Error("Subscribe: expected true")
		}
		if !c.Unsubscribe("room1") {
			t.Error("Unsubscribe: expected true")
		}
		if c.SendMessage("room1", oocsi.Message{"a": oocsi.Bool(true)}) {
			t.Error("SendMessage: expected false when the link skips it")
		}
	})

	t.Run("Run feeds frames into the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		link := oocsi.NewMockLink(ctrl)
		link.EXPECT().Loop(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, handle modem.FrameHandler) error {
				handle(`+IPD,5:{"k":1}`)
				return context.Canceled
			})

		var seen []oocsi.Message
		c := oocsi.NewClient(link, oocsi.WithMessageHandler(func(msg oocsi.Message) {
			seen = append(seen, msg)
		}))

		if err := c.Run(context.Background()); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(seen) != 1 || c.Get("k", "") != "1" {
			t.Errorf("expected message to be stored, got %v", seen)
		}
	})
}

func TestClientHandleFrame(t *testing.T) {
	t.Run("Payload sets the slot and the flag", func(t *testing.T) {
		c := oocsi.NewClient(nil)
		c.HandleFrame(`+IPD,5:{"k":1}`)

		if !c.Check() {
			t.Error("expected new data")
		}
		if c.Check() {
			t.Error("Check must clear the flag")
		}
		if got := c.Get("k", "none"); got != "1" {
			t.Errorf("expected 1, got %q", got)
		}
	})

	t.Run("Keep-alive changes nothing", func(t *testing.T) {
		c := oocsi.NewClient(nil)
		c.HandleFrame(`+IPD,5:{"k":1}`)
		c.Check()

		c.HandleFrame("+IPD,4:ping")

		if c.Check() {
			t.Error("keep-alive must not raise the flag")
		}
		if got := c.Get("k", "none"); got != "1" {
			t.Errorf("keep-alive must not touch the slot, got %q", got)
		}
	})

	t.Run("Empty object changes nothing", func(t *testing.T) {
		c := oocsi.NewClient(nil)
		c.HandleFrame(`+IPD,5:{"k":1}`)
		c.Check()

		c.HandleFrame("+IPD,2:{}")

		if c.Check() || c.Get("k", "none") != "1" {
			t.Error("empty object must leave the slot alone")
		}
	})

	t.Run("Malformed payload resets the slot", func(t *testing.T) {
		c := oocsi.NewClient(nil)
		c.HandleFrame(`+IPD,5:{"k":1}`)

		c.HandleFrame(`+IPD,6:{"k":`)

		if c.Check() {
			t.Error("expected flag cleared after a malformed payload")
		}
		if got := c.Get("k", "none"); got != "none" {
			t.Errorf("stale value retained: %q", got)
		}
	})
}

// connectedModem returns a modem with an open broker session whose next
// status query reports a Wi-Fi connection.
func connectedModem(t *testing.T, tr *modem.TestTransport) *modem.Modem {
	t.Helper()

	tr.Reply("AT+RESTORE", "OK\r\n\r\nready\r\n").
		Reply("ATE0", "OK\r\n").
		Reply(`AT+CIPSTART="TCP","super.oocsi.net",4444`, "CONNECT\r\n\r\nOK\r\n")

	config, err := modem.NewConfigBuilder().
		WithDialer(modem.TestDialer{Transport: tr}).
		WithClock(modem.NewTestClock()).
		Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}
	m, err := modem.New(context.Background(), config)
	if err != nil {
		t.Fatalf("failed to create modem: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	if !m.Init() {
		t.Fatal("Init() failed")
	}
	return m
}

func TestClientOverModem(t *testing.T) {
	t.Run("Publish announces the exact length", func(t *testing.T) {
		tr := modem.NewTestTransport()
		m := connectedModem(t, tr)
		c := oocsi.NewClient(m)
		if !c.Connect("super.oocsi.net", "dev1") {
			t.Fatal("expected Connect to succeed")
		}
		tr.Reply("AT+CIPSTATUS", "STATUS:3\r\n\r\nOK\r\n")

		if !c.Send("room1", "temp", oocsi.Int(23)) {
			t.Fatal("expected Send to deliver")
		}

		writes := tr.Writes()
		want := []string{"AT+CIPSEND=31\r\n", "sendjson room1 {\"temp\": 23}\r\n\r\n"}
		if !slices.Equal(writes[len(writes)-2:], want) {
			t.Errorf("expected %q, got %q", want, writes)
		}
	})

	t.Run("Publish writes nothing while disconnected", func(t *testing.T) {
		tr := modem.NewTestTransport()
		m := connectedModem(t, tr)
		c := oocsi.NewClient(m)
		if !c.Connect("super.oocsi.net", "dev1") {
			t.Fatal("expected Connect to succeed")
		}
		tr.Reply("AT+CIPSTATUS", "STATUS:5\r\n\r\nOK\r\n")
		before := len(tr.Writes())

		if c.Send("room1", "temp", oocsi.Int(23)) {
			t.Error("expected Send to be skipped")
		}
		for _, w := range tr.Writes()[before:] {
			if w != "AT+CIPSTATUS\r\n" {
				t.Errorf("unexpected write %q", w)
			}
		}
	})

	t.Run("Inbound frame reaches the store", func(t *testing.T) {
		tr := modem.NewTestTransport()
		m := connectedModem(t, tr)
		c := oocsi.NewClient(m)

		tr.SendData("\r\n+IPD,7:{\"k\":1}\r\n")
		c.HandleFrame(m.Poll())

		if !c.Check() {
			t.Fatal("expected new data")
		}
		if got := c.Store().GetNumber("k", 0); got != 1 {
			t.Errorf("expected k=1, got %v", got)
		}
	})
}
