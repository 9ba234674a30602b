package oocsi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FrameKind classifies an inbound notification frame.
type FrameKind int

const (
	FrameEmpty FrameKind = iota
	FrameKeepAlive
	FramePayload
)

func (k FrameKind) String() string {
	switch k {
	case FrameEmpty:
		return "empty"
	case FrameKeepAlive:
		return "keep-alive"
	case FramePayload:
		return "payload"
	default:
		return fmt.Sprintf("FrameKind(%d)", int(k))
	}
}

// keepAlive is the token the broker sends to probe idle clients.
const keepAlive = "ping"

// DecodeFrame parses one +IPD frame. Blank frames and keep-alives carry no
// message. Anything else must hold a JSON object starting at the first '{';
// otherwise ErrMalformedPayload is returned.
func DecodeFrame(frame string) (Message, FrameKind, error) {
	if strings.TrimSpace(frame) == "" {
		return nil, FrameEmpty, nil
	}

	start := strings.IndexByte(frame, '{')
	if start < 0 {
		if strings.Contains(frame, keepAlive) {
			return nil, FrameKeepAlive, nil
		}
		return nil, FramePayload, fmt.Errorf("%w: no object in %q", ErrMalformedPayload, frame)
	}

	var msg Message
	dec := json.NewDecoder(strings.NewReader(frame[start:]))
	dec.UseNumber()
	if err := dec.Decode(&msg); err != nil {
		return nil, FramePayload, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if msg == nil {
		msg = Message{}
	}
	return msg, FramePayload, nil
}
