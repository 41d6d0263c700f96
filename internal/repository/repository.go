package repository

import (
	"context"

	"token-service/internal/domain/token"
)

// TokenProvider supplies the full current collection of tokens.
// Implementations own any reload or locking discipline; callers treat the
// returned slice as read-only.
type TokenProvider interface {
	GetTokens(ctx context.Context) ([]token.Token, error)
}
