package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TransportError means no usable HTTP response was obtained: the request
// could not be sent, the connection failed, or the body could not be read
// or decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a response with a non-success status. Message holds the
// server's own explanation when the body carried one; Structured tells the
// two cases apart.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
	Structured bool
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// errorBody covers both shapes the API answers with.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newStatusError(op string, code int, body []byte) *StatusError {
	se := &StatusError{Op: op, StatusCode: code}
	eb := errorBody{}
	if err := json.Unmarshal(body, &eb); err != nil {
		return se
	}
	switch {
	case strings.TrimSpace(eb.Error) != "":
		se.Message = eb.Error
	case strings.TrimSpace(eb.Message) != "":
		se.Message = eb.Message
	default:
		return se
	}
	se.Structured = true
	return se
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// MessageOr picks the user-facing message for err: the server's message
// when it sent one, otherwise fallback.
func MessageOr(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Structured {
		return se.Message
	}
	return fallback
}
