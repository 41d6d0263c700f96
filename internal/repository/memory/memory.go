package memory

import (
	"context"
	"log"
	"sync"
	"time"

	"token-service/internal/domain/token"
	"token-service/internal/repository"
)

// Provider holds a token snapshot in memory. Replace swaps the snapshot
// wholesale, so a GetTokens caller always sees one consistent set.
type Provider struct {
	mu     sync.RWMutex
	tokens []token.Token
}

func New(tokens []token.Token) *Provider {
	p := &Provider{}
	p.Replace(tokens)
	return p
}

func (p *Provider) GetTokens(ctx context.Context) ([]token.Token, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tokens, nil
}

// Replace installs a copy of tokens as the current snapshot.
func (p *Provider) Replace(tokens []token.Token) {
	snapshot := make([]token.Token, len(tokens))
	for i, t := range tokens {
		perms := make([]token.Permission, len(t.Permissions))
		copy(perms, t.Permissions)
		snapshot[i] = token.Token{ID: t.ID, Permissions: perms}
	}

	p.mu.Lock()
	p.tokens = snapshot
	p.mu.Unlock()
}

func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tokens)
}

// Refresher periodically copies tokens from a slower source into a Provider.
type Refresher struct {
	source   repository.TokenProvider
	store    *Provider
	interval time.Duration
}

func NewRefresher(source repository.TokenProvider, store *Provider, interval time.Duration) *Refresher {
	return &Refresher{
		source:   source,
		store:    store,
		interval: interval,
	}
}

// Refresh loads the source once. On failure the previous snapshot stays.
func (r *Refresher) Refresh(ctx context.Context) error {
	tokens, err := r.source.GetTokens(ctx)
	if err != nil {
		return err
	}
	r.store.Replace(tokens)
	return nil
}

// Run refreshes on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				log.Printf("token refresh failed, keeping %d cached tokens: %v", r.store.Len(), err)
				continue
			}
			log.Printf("token refresh loaded %d tokens", r.store.Len())
		}
	}
}
