package fetch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kientrucanlac/anlac/pkg/envelope"
)

// invocation is one producer call owned by a Query.
type invocation struct {
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	finished   bool
}

// finish releases waiters. Caller must hold the Query lock.
func (inv *invocation) finish() {
	if inv.finished {
		return
	}
	inv.finished = true
	inv.cancel()
	close(inv.done)
}

// Query runs a producer when activated and whenever its dependency values
// change. Only the most recently started invocation may apply its result:
// starting a new invocation cancels the previous one, and results that
// arrive after Close are dropped.
type Query[T any] struct {
	producer envelope.Producer[T]
	logger   *slog.Logger

	mu          sync.Mutex
	state       State[T]
	deps        []any
	activated   bool
	closed      bool
	generation  uint64
	inflight    *invocation
	invocations int
	onChange    func(State[T])

	// seq orders transitions so observers never see an older snapshot
	// after a newer one. Snapshots queue under notifyMu and are delivered
	// outside it, so an observer may call back into the Query.
	seq        uint64
	notifyMu   sync.Mutex
	queued     uint64
	pending    []State[T]
	delivering bool
}

// QueryOption configures a Query.
type QueryOption[T any] func(*Query[T])

// WithOnChange registers an observer called after every state transition,
// in transition order. It runs outside the Query locks.
func WithOnChange[T any](fn func(State[T])) QueryOption[T] {
	return func(q *Query[T]) { q.onChange = fn }
}

// WithLogger sets the logger used for dropped and failed invocations.
func WithLogger[T any](l *slog.Logger) QueryOption[T] {
	return func(q *Query[T]) { q.logger = l }
}

// NewQuery creates a Query for producer. Nothing runs until Activate.
func NewQuery[T any](producer envelope.Producer[T], opts ...QueryOption[T]) *Query[T] {
	q := &Query[T]{
		producer: producer,
		logger:   slog.With("component", "fetch"),
		state:    loading[T](),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Activate starts the producer on the first call and on every call whose
// deps differ by value from the previous call. ctx bounds the invocation.
func (q *Query[T]) Activate(ctx context.Context, deps ...any) {
	q.mu.Lock()
	if q.closed || (q.activated && depsEqual(q.deps, deps)) {
		q.mu.Unlock()
		return
	}
	q.activated = true
	q.deps = append([]any(nil), deps...)
	seq, snapshot := q.startLocked(ctx)
	q.mu.Unlock()

	q.notify(seq, snapshot)
}

// Refetch re-invokes the producer regardless of dependency changes.
func (q *Query[T]) Refetch(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.activated = true
	seq, snapshot := q.startLocked(ctx)
	q.mu.Unlock()

	q.notify(seq, snapshot)
}

// State returns the current snapshot.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Invocations returns how many times the producer has been started.
func (q *Query[T]) Invocations() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.invocations
}

// Wait blocks until the most recently started invocation settles, then
// returns the snapshot. If a newer invocation starts while waiting, Wait
// follows it.
func (q *Query[T]) Wait(ctx context.Context) (State[T], error) {
	for {
		q.mu.Lock()
		inv := q.inflight
		if inv == nil || inv.finished {
			s := q.state
			q.mu.Unlock()
			return s, nil
		}
		done := inv.done
		q.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return q.State(), ctx.Err()
		}
	}
}

// Close tears the Query down. The in-flight invocation is cancelled and
// any late completion is discarded.
func (q *Query[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	if q.inflight != nil {
		q.inflight.finish()
	}
}

func (q *Query[T]) startLocked(parent context.Context) (uint64, State[T]) {
	if q.inflight != nil {
		q.inflight.finish()
	}

	q.generation++
	ctx, cancel := context.WithCancel(parent)
	inv := &invocation{
		generation: q.generation,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	q.inflight = inv
	q.invocations++
	q.state = loading[T]()
	q.seq++

	go q.run(ctx, inv)

	return q.seq, q.state
}

func (q *Query[T]) run(ctx context.Context, inv *invocation) {
	env, err := q.producer(ctx)
	value, ferr := unwrap(env, err)

	q.mu.Lock()
	if q.closed || q.inflight != inv {
		q.mu.Unlock()
		q.logger.Debug("Dropping stale fetch result", "generation", inv.generation)
		return
	}
	if ferr != nil {
		q.state = failed[T](ferr.Message)
		q.logger.Warn("Fetch failed", "generation", inv.generation, "error", ferr.Message)
	} else {
		q.state = ready(value)
	}
	inv.finish()
	q.seq++
	seq, snapshot := q.seq, q.state
	q.mu.Unlock()

	q.notify(seq, snapshot)
}

func (q *Query[T]) notify(seq uint64, s State[T]) {
	if q.onChange == nil {
		return
	}

	q.notifyMu.Lock()
	if seq <= q.queued {
		q.notifyMu.Unlock()
		return
	}
	q.queued = seq
	q.pending = append(q.pending, s)
	if q.delivering {
		// The active deliverer picks it up.
		q.notifyMu.Unlock()
		return
	}
	q.delivering = true

	for len(q.pending) > 0 {
		next := q.pending[0]
		q.pending = q.pending[1:]
		q.notifyMu.Unlock()
		q.onChange(next)
		q.notifyMu.Lock()
	}
	q.delivering = false
	q.notifyMu.Unlock()
}
