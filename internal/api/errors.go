package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel failures for conditions detected before or instead of an HTTP
// response. Network failure, timeout and HTTP errors all travel the same
// error channel so callers have one handling path.
var (
	// ErrOffline is returned when connectivity is known to be absent; the
	// request is not attempted.
	ErrOffline = errors.New("network error: unable to reach the server, check your connection")

	// ErrTimeout is returned when a request is aborted by the per-request
	// deadline.
	ErrTimeout = errors.New("request timed out, please try again later")
)

// Error is the normalized shape of a non-2xx response. It carries the HTTP
// status, status text and the raw response body alongside a user-facing
// message resolved from the body or the status code.
type Error struct {
	StatusCode int
	Status     string
	Body       []byte
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// IsStatus reports whether err is an *Error with the given HTTP status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// messageForStatus maps status codes to user-facing message categories.
func messageForStatus(code int) string {
	switch {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return "validation error, please check your input"
	case code == http.StatusUnauthorized:
		return "unauthorized, please login again"
	case code == http.StatusForbidden:
		return "you do not have permission to access this resource"
	case code == http.StatusNotFound:
		return "resource not found"
	case code >= 500:
		return "server error, please try again later"
	default:
		return http.StatusText(code)
	}
}

// newError builds an *Error for a response, preferring a message carried in
// the body ("message" or "detail", or field-keyed validation errors) over the
// generic status mapping.
func newError(statusCode int, status string, body []byte) *Error {
	return &Error{
		StatusCode: statusCode,
		Status:     status,
		Body:       body,
		Message:    resolveMessage(statusCode, body),
	}
}

func resolveMessage(statusCode int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		return messageForStatus(statusCode)
	}

	if msg, ok := payload["message"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := payload["detail"].(string); ok && msg != "" {
		return msg
	}

	// Validation responses key error lists by form field; flatten them so
	// the message is renderable without the body.
	var fields []string
	for field, v := range payload {
		switch val := v.(type) {
		case string:
			fields = append(fields, field+": "+val)
		case []any:
			for _, item := range val {
				if s, ok := item.(string); ok {
					fields = append(fields, field+": "+s)
				}
			}
		}
	}
	if len(fields) > 0 {
		sort.Strings(fields)
		return strings.Join(fields, "; ")
	}

	return messageForStatus(statusCode)
}
