package session

import (
	"context"
	"sync"
	"time"
)

// TokenStore holds backend bearer tokens keyed by visitor session ID.
type TokenStore interface {
	// Get returns the token for id, or ErrNoToken.
	Get(ctx context.Context, id string) (string, error)
	// Set stores token for id. ttl <= 0 means no expiry.
	Set(ctx context.Context, id, token string, ttl time.Duration) error
	// Delete removes the token for id. Deleting a missing token is not an error.
	Delete(ctx context.Context, id string) error
}

type memoryToken struct {
	value     string
	expiresAt time.Time
}

// MemoryTokenStore is a process-local TokenStore.
// Expired entries are removed lazily on Get.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]memoryToken
	now    func() time.Time
}

// NewMemoryTokenStore creates an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[string]memoryToken),
		now:    time.Now,
	}
}

func (s *MemoryTokenStore) Get(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	tok, ok := s.tokens[id]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNoToken
	}
	if !tok.expiresAt.IsZero() && !s.now().Before(tok.expiresAt) {
		s.mu.Lock()
		// Re-check: a concurrent Set may have replaced the entry.
		if current, ok := s.tokens[id]; ok && current == tok {
			delete(s.tokens, id)
		}
		s.mu.Unlock()
		return "", ErrNoToken
	}
	return tok.value, nil
}

func (s *MemoryTokenStore) Set(_ context.Context, id, token string, ttl time.Duration) error {
	tok := memoryToken{value: token}
	if ttl > 0 {
		tok.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.tokens[id] = tok
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.tokens, id)
	s.mu.Unlock()
	return nil
}
