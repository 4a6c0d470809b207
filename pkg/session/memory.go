package session

import (
	"context"
	"sync"
)

// MemoryBinder keeps bindings in process memory. Used in tests and as a
// fallback when redis is not configured.
type MemoryBinder struct {
	mu    sync.RWMutex
	carts map[string]string
	users map[string]string
}

func NewMemoryBinder() *MemoryBinder {
	return &MemoryBinder{
		carts: make(map[string]string),
		users: make(map[string]string),
	}
}

func (b *MemoryBinder) BindCart(_ context.Context, sessionID, cartID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.carts[sessionID] = cartID
	return nil
}

func (b *MemoryBinder) ResolveCart(_ context.Context, sessionID string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.carts[sessionID], nil
}

func (b *MemoryBinder) BindPrincipal(_ context.Context, sessionID, userID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[sessionID] = userID
	return nil
}

func (b *MemoryBinder) ResolvePrincipal(_ context.Context, sessionID string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.users[sessionID], nil
}

func (b *MemoryBinder) ClearPrincipal(_ context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.users, sessionID)
	return nil
}
