package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/repository"
)

// Binder maps an opaque session identifier to the cart and principal bound
// to that browser visit. An empty return value means "nothing bound"; it is
// never an error. Session storage itself (cookie issuing, identifiers) is
// handled by the web layer.
type Binder interface {
	BindCart(ctx context.Context, sessionID, cartID string) error
	ResolveCart(ctx context.Context, sessionID string) (string, error)
	BindPrincipal(ctx context.Context, sessionID, userID string) error
	ResolvePrincipal(ctx context.Context, sessionID string) (string, error)
	ClearPrincipal(ctx context.Context, sessionID string) error
}

type redisBinder struct {
	redis *repository.RedisRepository
	cfg   *config.SessionConfig
}

// NewRedisBinder stores session bindings in redis under
// session:<id>:cart and session:<id>:user, expiring with the session TTL.
func NewRedisBinder(redis *repository.RedisRepository, cfg *config.SessionConfig) Binder {
	return &redisBinder{redis: redis, cfg: cfg}
}

func cartKey(sessionID string) string { return fmt.Sprintf("session:%s:cart", sessionID) }
func userKey(sessionID string) string { return fmt.Sprintf("session:%s:user", sessionID) }

func (b *redisBinder) BindCart(ctx context.Context, sessionID, cartID string) error {
	return b.redis.Set(ctx, cartKey(sessionID), cartID, b.cfg.TTL)
}

func (b *redisBinder) ResolveCart(ctx context.Context, sessionID string) (string, error) {
	v, err := b.redis.Get(ctx, cartKey(sessionID))
	if errors.Is(err, repository.ErrKeyNotFound) {
		return "", nil
	}
	return v, err
}

func (b *redisBinder) BindPrincipal(ctx context.Context, sessionID, userID string) error {
	return b.redis.Set(ctx, userKey(sessionID), userID, b.cfg.TTL)
}

func (b *redisBinder) ResolvePrincipal(ctx context.Context, sessionID string) (string, error) {
	v, err := b.redis.Get(ctx, userKey(sessionID))
	if errors.Is(err, repository.ErrKeyNotFound) {
		return "", nil
	}
	return v, err
}

func (b *redisBinder) ClearPrincipal(ctx context.Context, sessionID string) error {
	return b.redis.Del(ctx, userKey(sessionID))
}
