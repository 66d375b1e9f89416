// Package session keeps per-visitor state: the backend token and the chat
// widget. Visitors are identified by a cookie holding the session ID.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/kientrucanlac/anlac/pkg/chat"
)

var (
	// ErrNotFound is returned when a visitor session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrNoToken is returned by token stores when no token is held.
	ErrNoToken = errors.New("no token stored")
)

// Visitor is one browser session.
type Visitor struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Widget    *chat.Widget `json:"-"`

	mu       sync.RWMutex
	lastSeen time.Time
}

// Touch records activity (thread-safe).
func (v *Visitor) Touch(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastSeen = now
}

// LastSeen returns the time of the last recorded activity (thread-safe).
func (v *Visitor) LastSeen() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastSeen
}

// idleSince reports whether the visitor has been inactive for at least ttl.
func (v *Visitor) idleSince(now time.Time, ttl time.Duration) bool {
	return now.Sub(v.LastSeen()) >= ttl
}
