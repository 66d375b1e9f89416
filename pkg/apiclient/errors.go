package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is matched by responses with HTTP 401. By the time a
	// caller sees it the session token has already been cleared.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is matched by responses with HTTP 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNoContent is returned by Upload for a File without a Content reader.
	ErrNoContent = errors.New("upload file has no content")
)

// ResponseError is returned for non-2xx responses. Message holds the
// envelope message from the body when the backend sent one.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: backend returned HTTP %d", e.Method, e.Path, e.StatusCode)
}

// EnvelopeMessage exposes the body's envelope message to the fetch layer.
func (e *ResponseError) EnvelopeMessage() string {
	return e.Message
}

// Is matches ErrUnauthorized and ErrNotFound by status code.
func (e *ResponseError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
