package postgres

import (
	"context"

	"token-service/internal/domain/token"
	"token-service/internal/repository"
)

const listTokensQuery = `SELECT token, permissions FROM tokens ORDER BY token`

// TokenRepository lists tokens from the tokens table:
//
//	token       TEXT PRIMARY KEY
//	permissions TEXT[] NOT NULL
type TokenRepository struct {
	db Querier
}

func NewTokenRepository(db Querier) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) GetTokens(ctx context.Context) ([]token.Token, error) {
	rows, err := r.db.Query(ctx, listTokensQuery)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, errTokensMissing(err)
		}
		return nil, errFailedListTokens(err)
	}
	defer rows.Close()

	var tokens []token.Token
	for rows.Next() {
		var (
			id    string
			perms []string
		)
		if err := rows.Scan(&id, &perms); err != nil {
			return nil, errFailedScanToken(err)
		}

		parsed, err := repository.ParsePermissions(perms)
		if err != nil {
			return nil, errInvalidStoredToken(id, err)
		}
		tokens = append(tokens, token.Token{ID: id, Permissions: parsed})
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateTokens(err)
	}

	return tokens, nil
}
