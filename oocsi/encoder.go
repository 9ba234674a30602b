package oocsi

import (
	"slices"
	"strings"
)

// Capability advertised when joining. The client only speaks JSON.
const CapabilityJSON = "JSON"

// DefaultPort is the OOCSI broker's plain socket port.
const DefaultPort = 4444

// JoinLine builds the identity line sent right after the connection opens.
func JoinLine(name, capability string) string {
	if capability == "" {
		return name
	}
	return name + "(" + capability + ")"
}

// PublishLine builds a single-key publish: sendjson <channel> {"<key>": <v>}.
func PublishLine(channel, key string, v Value) string {
	return PublishMessageLine(channel, Message{key: v})
}

// PublishMessageLine builds a publish carrying every key of msg, in key
// order.
func PublishMessageLine(channel string, msg Message) string {
	keys := make([]string, 0, len(msg))
	for k := range msg {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b []byte
	b = append(b, "sendjson "...)
	b = append(b, channel...)
	b = append(b, " {"...)
	for i, k := range keys {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = appendQuoted(b, k)
		b = append(b, ": "...)
		b = msg[k].appendJSON(b)
	}
	b = append(b, '}')
	return string(b)
}

func SubscribeLine(channel string) string {
	return "subscribe " + strings.TrimSpace(channel)
}

func UnsubscribeLine(channel string) string {
	return "unsubscribe " + strings.TrimSpace(channel)
}
