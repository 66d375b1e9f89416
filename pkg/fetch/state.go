// Package fetch tracks the loading/ready/failed lifecycle of backend calls.
//
// Query is the auto-invoking form: it runs its producer on first activation
// and whenever its dependency values change, and can be refetched on demand.
// Mutation is the manual form used for create/update/delete calls.
package fetch

import (
	"reflect"
)

// Phase is the lifecycle phase of a Query.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// State is a snapshot of a Query.
// Value is meaningful only in PhaseReady, Err only in PhaseFailed.
type State[T any] struct {
	Phase Phase  `json:"phase"`
	Value T      `json:"value,omitempty"`
	Err   string `json:"error,omitempty"`
}

// Loading reports whether an invocation is in flight.
func (s State[T]) Loading() bool { return s.Phase == PhaseLoading }

// Ready reports whether the last invocation produced a value.
func (s State[T]) Ready() bool { return s.Phase == PhaseReady }

// Failed reports whether the last invocation failed.
func (s State[T]) Failed() bool { return s.Phase == PhaseFailed }

func loading[T any]() State[T] {
	return State[T]{Phase: PhaseLoading}
}

func ready[T any](v T) State[T] {
	return State[T]{Phase: PhaseReady, Value: v}
}

func failed[T any](msg string) State[T] {
	return State[T]{Phase: PhaseFailed, Err: msg}
}

// depsEqual compares two dependency sequences position-wise by value.
func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
