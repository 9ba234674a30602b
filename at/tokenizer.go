package at

import (
	"bufio"
	"bytes"
	"strings"
)

// SplitLines returns a split function that tokenizes modem output on the
// given delimiter. It uses the signature of bufio.SplitFunc so it can be
// directly used with bufio.Scanner.
//
// Synchronous AT responses are framed by CRLF, while the payload of a +IPD
// notification is framed by a bare LF, so the delimiter is a parameter.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func SplitLines(delim string) bufio.SplitFunc {
	sep := []byte(delim)
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}

		if i := bytes.Index(data, sep); i >= 0 {
			return i + len(sep), data[0:i], nil
		}

		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}

// Splitter tokenizes synchronous AT responses by CRLF line endings.
//
// Important: This splitter assumes "No Echo" mode (ATE0). If echo is enabled,
// command echoes are returned as ordinary data lines.
var Splitter = SplitLines(CRLF)

// Classify identifies the nature of the modem output
func Classify(line string) ResponseType {
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == Prompt {
		return TypePrompt
	}

	// Direct matches for final results
	switch line {
	case OK, ERROR, SendOK, SendFail:
		return TypeFinal
	}

	// Prefix matches
	switch {
	case strings.HasPrefix(line, IPD),
		strings.HasPrefix(line, UrcWifi),
		line == UrcClosed,
		line == Ready:
		return TypeURC
	default:
		return TypeData
	}
}
