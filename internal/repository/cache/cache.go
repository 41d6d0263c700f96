package cache

import (
	"context"
	"sync"
	"time"

	"token-service/internal/domain/token"
	"token-service/internal/repository"
)

// entry is a cached token set and the moment it stops being served.
type entry struct {
	tokens     []token.Token
	expiryTime time.Time
}

// Provider caches the token set of a slower source for a fixed TTL.
// A failed load is not cached; the next call retries the source.
type Provider struct {
	source repository.TokenProvider
	ttl    time.Duration
	now    func() time.Time

	mutex   sync.RWMutex
	current *entry
}

func New(source repository.TokenProvider, ttl time.Duration) *Provider {
	return &Provider{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (p *Provider) GetTokens(ctx context.Context) ([]token.Token, error) {
	if tokens, ok := p.get(); ok {
		return tokens, nil
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Another caller may have refilled while we waited for the lock.
	if p.current != nil && p.now().Before(p.current.expiryTime) {
		return p.current.tokens, nil
	}

	tokens, err := p.source.GetTokens(ctx)
	if err != nil {
		return nil, err
	}

	p.current = &entry{tokens: tokens, expiryTime: p.now().Add(p.ttl)}
	return tokens, nil
}

func (p *Provider) get() ([]token.Token, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if p.current != nil && p.now().Before(p.current.expiryTime) {
		return p.current.tokens, true
	}
	return nil, false
}
