package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	msgNetwork    = "Network error. Please check your connection."
	msgUnexpected = "An unexpected error occurred"
)

// Error is the single failure type returned by the client.
//
// Message is what callers display. Status is the HTTP status code, or 0 when
// no response was received or the response could not be decoded.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Message returns the user-facing text for any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// Unexpected wraps a response that succeeded but cannot be used.
func Unexpected(err error) *Error {
	return &Error{Message: msgUnexpected, Err: err}
}

func networkError(err error) *Error {
	return &Error{Message: msgNetwork, Err: err}
}

// statusError picks the message for a non-2xx response: the server's
// "message" field, then its "error" field, then a generic status message.
func statusError(status int, body []byte) *Error {
	msg := ""
	var payload map[string]any
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		for _, k := range []string{"message", "error"} {
			if s, ok := payload[k].(string); ok && strings.TrimSpace(s) != "" {
				msg = strings.TrimSpace(s)
				break
			}
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status code %d", status)
	}
	return &Error{Status: status, Message: msg}
}
