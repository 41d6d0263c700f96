package manager

import (
	"context"

	"token-service/internal/domain/token"
	"token-service/internal/repository"
	apperrors "token-service/pkg/errors"
)

// TokenAccessManager resolves tokens and answers permission questions about them.
type TokenAccessManager struct {
	provider repository.TokenProvider
}

func NewTokenAccessManager(provider repository.TokenProvider) *TokenAccessManager {
	return &TokenAccessManager{provider: provider}
}

// GetToken returns the first token whose id equals tokenID exactly.
// A nil token with a nil error means no such token exists; a non-nil error
// is a provider fault.
func (m *TokenAccessManager) GetToken(ctx context.Context, tokenID string) (*token.Token, error) {
	tokens, err := m.provider.GetTokens(ctx)
	if err != nil {
		return nil, apperrors.ProviderUnavailable(err)
	}

	for i := range tokens {
		if tokens[i].ID == tokenID {
			t := tokens[i]
			return &t, nil
		}
	}

	return nil, nil
}

func (m *TokenAccessManager) HasPermission(t *token.Token, perm token.Permission) bool {
	return t.HasPermission(perm)
}
