package modem

import "fmt"

// State is the connection progress of a Modem. It only moves forward; a
// failed step leaves it at the last successful value.
type State int32

const (
	StateUninitialized State = iota
	StateModemReady
	StateWifiConnected
	StateBrokerConnected
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateModemReady:
		return "modem-ready"
	case StateWifiConnected:
		return "wifi-connected"
	case StateBrokerConnected:
		return "broker-connected"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
