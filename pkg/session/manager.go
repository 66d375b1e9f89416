package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kientrucanlac/anlac/pkg/chat"
)

// DefaultIdleTTL is how long a visitor session survives without requests.
const DefaultIdleTTL = 2 * time.Hour

// Manager manages visitor sessions in memory. Tokens live in the TokenStore,
// which may be shared across replicas.
type Manager struct {
	tokens     TokenStore
	widgetOpts []chat.Option
	idleTTL    time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu       sync.RWMutex
	visitors map[string]*Visitor
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIdleTTL overrides DefaultIdleTTL.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTTL = ttl }
}

// WithWidgetOptions applies opts to every new chat widget.
func WithWidgetOptions(opts ...chat.Option) ManagerOption {
	return func(m *Manager) { m.widgetOpts = append(m.widgetOpts, opts...) }
}

// WithNow replaces time.Now.
func WithNow(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a session manager backed by tokens.
func NewManager(tokens TokenStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		tokens:   tokens,
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
		logger:   slog.With("component", "session"),
		visitors: make(map[string]*Visitor),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new visitor session with a fresh chat widget.
func (m *Manager) Create() *Visitor {
	now := m.now()
	v := &Visitor{
		ID:        uuid.New().String(),
		CreatedAt: now,
		Widget:    chat.NewWidget(m.widgetOpts...),
		lastSeen:  now,
	}

	m.mu.Lock()
	m.visitors[v.ID] = v
	m.mu.Unlock()

	m.logger.Debug("Visitor session created", "session_id", v.ID)
	return v
}

// Get retrieves a visitor by ID and records activity.
func (m *Manager) Get(id string) (*Visitor, error) {
	m.mu.RLock()
	v, ok := m.visitors[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	v.Touch(m.now())
	return v, nil
}

// GetOrCreate returns the visitor for id, or a new one when id is unknown.
// created reports whether a new session was started.
func (m *Manager) GetOrCreate(id string) (v *Visitor, created bool) {
	if id != "" {
		if v, err := m.Get(id); err == nil {
			return v, false
		}
	}
	return m.Create(), true
}

// Count returns the number of live visitor sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.visitors)
}

// Delete ends a visitor session: its widget is closed (pending replies are
// dropped) and its token removed.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	v, ok := m.visitors[id]
	if ok {
		delete(m.visitors, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	v.Widget.Close()
	if err := m.tokens.Delete(ctx, id); err != nil {
		m.logger.Warn("Failed to delete token for ended session", "session_id", id, "error", err)
	}
	return nil
}

// ExpireIdle ends every session idle for at least the idle TTL and returns
// how many were removed.
func (m *Manager) ExpireIdle(ctx context.Context) int {
	now := m.now()

	m.mu.RLock()
	var stale []string
	for id, v := range m.visitors {
		if v.idleSince(now, m.idleTTL) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if err := m.Delete(ctx, id); err == nil {
			removed++
		}
	}
	return removed
}

// Tokens exposes the token store.
func (m *Manager) Tokens() TokenStore {
	return m.tokens
}
