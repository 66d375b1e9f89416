package session

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrTokenExpired is returned by Login for a JWT whose exp is in the past.
var ErrTokenExpired = errors.New("token already expired")

// Login stores token for the visitor. A JWT's exp claim becomes the storage
// TTL so the token disappears when it would be rejected anyway.
func (m *Manager) Login(ctx context.Context, id, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoToken
	}
	ttl := tokenTTL(token, m.now())
	if ttl < 0 {
		return ErrTokenExpired
	}
	return m.tokens.Set(ctx, id, token, ttl)
}

// Logout removes the visitor's token.
func (m *Manager) Logout(ctx context.Context, id string) error {
	return m.tokens.Delete(ctx, id)
}

// Handle binds a visitor to one request. It is the session object handed to
// the backend client: it supplies the token and records the forced logout
// redirect so the HTTP layer can act on it.
type Handle struct {
	ctx     context.Context
	manager *Manager
	visitor *Visitor

	mu       sync.Mutex
	redirect string
}

// Bind creates a Handle for visitor scoped to ctx.
func (m *Manager) Bind(ctx context.Context, v *Visitor) *Handle {
	return &Handle{ctx: ctx, manager: m, visitor: v}
}

// Visitor returns the bound visitor.
func (h *Handle) Visitor() *Visitor {
	return h.visitor
}

// Token returns the visitor's bearer token or "".
func (h *Handle) Token() string {
	tok, err := h.manager.tokens.Get(h.ctx, h.visitor.ID)
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			h.manager.logger.Warn("Token lookup failed", "session_id", h.visitor.ID, "error", err)
		}
		return ""
	}
	return tok
}

// ClearToken removes the visitor's token.
func (h *Handle) ClearToken() {
	if err := h.manager.tokens.Delete(h.ctx, h.visitor.ID); err != nil {
		h.manager.logger.Warn("Token delete failed", "session_id", h.visitor.ID, "error", err)
	}
}

// RedirectToLogin records that the visitor must be sent to path.
func (h *Handle) RedirectToLogin(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.redirect = path
}

// Redirect returns the recorded redirect target, if any.
func (h *Handle) Redirect() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.redirect, h.redirect != ""
}
