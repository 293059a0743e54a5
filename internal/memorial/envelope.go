package memorial

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CodeUnreachable marks a failure where no HTTP response was received.
const CodeUnreachable = 0

// Envelope is the uniform result of every Gateway call. When Success is false
// Data must be treated as absent; use Value to read it safely.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`

	err error
}

// Value returns the payload and true only for successful envelopes.
func (e Envelope[T]) Value() (T, bool) {
	if !e.Success {
		var zero T
		return zero, false
	}
	return e.Data, true
}

// Err returns the underlying cause of a failure envelope, if one is known.
// It is meant for logging; callers branch on Success.
func (e Envelope[T]) Err() error {
	if e.Success {
		return nil
	}
	if e.err != nil {
		return e.err
	}
	return errors.New(e.Message)
}

// Failure builds a failure envelope. The payload is always the zero value.
func Failure[T any](code int, message string, cause error) Envelope[T] {
	return Envelope[T]{Success: false, Code: code, Message: message, err: cause}
}

// Success builds a successful envelope around data.
func Success[T any](code int, message string, data T) Envelope[T] {
	return Envelope[T]{Success: true, Code: code, Message: message, Data: data}
}

// wireEnvelope is the JSON shape as it travels; Data is decoded only after the
// success flag has been checked.
type wireEnvelope struct {
	Success *bool           `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var errMalformed = errors.New("malformed envelope")

func decodeWire(body []byte) (wireEnvelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(body, &w); err != nil {
		return wireEnvelope{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if w.Success == nil {
		return wireEnvelope{}, fmt.Errorf("%w: missing success flag", errMalformed)
	}
	return w, nil
}

func (w wireEnvelope) hasData() bool {
	trimmed := bytes.TrimSpace(w.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
