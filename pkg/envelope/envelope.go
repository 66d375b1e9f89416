// Package envelope defines the {status, data, message} wire contract shared by
// every backend call.
package envelope

import (
	"context"
	"errors"
)

// Status is the logical outcome reported by the backend.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Envelope is the JSON body returned by every backend endpoint.
// A transport-level success may still carry Status == StatusError.
type Envelope[T any] struct {
	Status  Status `json:"status"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the envelope signals logical success.
func (e *Envelope[T]) OK() bool {
	return e != nil && e.Status == StatusOK
}

// Producer is a zero-argument asynchronous operation yielding an envelope.
// A returned error means the underlying call did not complete.
type Producer[T any] func(ctx context.Context) (*Envelope[T], error)

// MessageCarrier is implemented by failures that carry a backend envelope
// message, e.g. an error response whose body was a decoded envelope.
type MessageCarrier interface {
	EnvelopeMessage() string
}

// MessageOf returns the envelope message carried anywhere in err's chain.
func MessageOf(err error) string {
	var mc MessageCarrier
	if errors.As(err, &mc) {
		return mc.EnvelopeMessage()
	}
	return ""
}

// New returns an ok envelope wrapping data.
func New[T any](data T) *Envelope[T] {
	return &Envelope[T]{Status: StatusOK, Data: data}
}

// Fail returns an error envelope with the given message.
func Fail[T any](message string) *Envelope[T] {
	return &Envelope[T]{Status: StatusError, Message: message}
}
