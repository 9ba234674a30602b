package oocsi

import "errors"

// ErrMalformedPayload is returned by DecodeFrame when a frame carries a
// payload start marker but the payload is not a JSON object.
var ErrMalformedPayload = errors.New("oocsi: malformed payload")
