package fetch

import (
	"context"
	"sync"

	"github.com/kientrucanlac/anlac/pkg/envelope"
)

// Mutation tracks loading and the last error of manually triggered calls
// (create, update, delete). It holds no value: Execute returns the payload.
type Mutation struct {
	mu      sync.Mutex
	pending int
	err     string
}

// NewMutation creates an idle Mutation.
func NewMutation() *Mutation {
	return &Mutation{}
}

// Loading reports whether any Execute call is in progress.
func (m *Mutation) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending > 0
}

// Err returns the message recorded by the last failed Execute, or "".
func (m *Mutation) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Execute invokes producer immediately. On an ok envelope it returns the
// unwrapped data; otherwise it records the resolved message on m and returns
// an *Error carrying it, even when the transport call itself succeeded.
func Execute[T any](ctx context.Context, m *Mutation, producer envelope.Producer[T]) (T, error) {
	m.mu.Lock()
	m.pending++
	m.err = ""
	m.mu.Unlock()

	env, err := producer(ctx)
	value, ferr := unwrap(env, err)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending--
	if ferr != nil {
		m.err = ferr.Message
		var zero T
		return zero, ferr
	}
	return value, nil
}
