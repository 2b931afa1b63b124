package apikit

import (
	"fmt"
	"net/http"
)

// APIError is returned when the server replied with a non-2xx status. Body
// holds the raw response payload; the classifier in message.go digs through
// it for display text, so it is kept unparsed here.
type APIError struct {
	Status    int
	Body      []byte
	RequestID string
	Header    http.Header
}

func (e *APIError) Error() string {
	text := http.StatusText(e.Status)
	if text == "" {
		text = "request failed"
	}
	return fmt.Sprintf("api: %s (status %d)", text, e.Status)
}

// RequestError is returned when the request went out but no reply came back
// (connection refused, DNS failure, timeout before headers).
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("api: no response from %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func statusMessage(status int) string {
	switch status {
	case 401:
		return "Unauthorized. Please log in again."
	case 403:
		return "You do not have permission to perform this action."
	case 404:
		return "Resource not found."
	case 500:
		return "A server error occurred. Please try again later."
	}
	return "An error occurred. Please try again."
}
