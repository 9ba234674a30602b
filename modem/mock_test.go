package modem_test

import (
	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/oocsigw/modem"
)

// MockSequenceBuilder records the transport calls of complete command
// exchanges. Every exchange starts with the engine draining residual input
// (one empty Read), followed by the command Write and the modem's answer.
type MockSequenceBuilder struct {
	transport *modem.MockTransport
	calls     []any
}

func NewMockSequence(transport *modem.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}
}

func (b *MockSequenceBuilder) exchange(cmd string, responses ...string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Read(gomock.Any()).Return(0, nil),
		b.transport.EXPECT().Write([]byte(cmd+"\r\n")).Return(len(cmd)+2, nil),
	)
	for _, resp := range responses {
		b.calls = append(b.calls,
			b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
				return copy(p, resp), nil
			}),
		)
	}
	return b
}

func (b *MockSequenceBuilder) Restore() *MockSequenceBuilder {
	return b.exchange("AT+RESTORE", "OK\r\n\r\n ets Jan  8 2013,rst cause:2\r\n\r\nready\r\n")
}

func (b *MockSequenceBuilder) EchoOff() *MockSequenceBuilder {
	return b.exchange("ATE0", "ATE0\r\n\r\nOK\r\n")
}

func (b *MockSequenceBuilder) EchoOffError() *MockSequenceBuilder {
	return b.exchange("ATE0", "ERROR\r\n")
}

func (b *MockSequenceBuilder) StationMode() *MockSequenceBuilder {
	return b.exchange("AT+CWMODE=1", "OK\r\n")
}

func (b *MockSequenceBuilder) Join(ssid, password string) *MockSequenceBuilder {
	return b.exchange(`AT+CWJAP="` + ssid + `","` + password + `"`)
}

func (b *MockSequenceBuilder) Status(code string) *MockSequenceBuilder {
	return b.exchange("AT+CIPSTATUS", "STATUS:"+code+"\r\n", "OK\r\n")
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}

func initMockCalls(transport *modem.MockTransport) []any {
	return NewMockSequence(transport).
		Restore().
		EchoOff().
		Build()
}
