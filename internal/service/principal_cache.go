package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gymcore/gym-gateway/internal/auth"
	"github.com/gymcore/gym-gateway/internal/domain"
)

// PrincipalCache memoizes stored principals for per-request role resolution.
// A role change becomes visible to the filter at most ttl after it is stored.
// Lookup failures are never cached.
type PrincipalCache struct {
	finder auth.PrincipalFinder
	cache  *expirable.LRU[string, domain.Principal]
}

var (
	_ auth.PrincipalFinder = (*PrincipalCache)(nil)
	_ PrincipalInvalidator = (*PrincipalCache)(nil)
)

// NewPrincipalCache wraps finder with an LRU of at most size entries.
func NewPrincipalCache(finder auth.PrincipalFinder, size int, ttl time.Duration) *PrincipalCache {
	if size <= 0 {
		size = 1024
	}
	return &PrincipalCache{
		finder: finder,
		cache:  expirable.NewLRU[string, domain.Principal](size, nil, ttl),
	}
}

func (c *PrincipalCache) FindPrincipal(ctx context.Context, username string) (*domain.Principal, error) {
	username = domain.NormalizeUsername(username)
	if cached, ok := c.cache.Get(username); ok {
		return &cached, nil
	}
	principal, err := c.finder.FindPrincipal(ctx, username)
	if err != nil {
		return nil, err
	}
	stored := *principal
	stored.PasswordHash = ""
	c.cache.Add(username, stored)
	return &stored, nil
}

// Invalidate drops the cached entry for username.
func (c *PrincipalCache) Invalidate(username string) {
	c.cache.Remove(domain.NormalizeUsername(username))
}
