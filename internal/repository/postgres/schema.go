package postgres

import (
	"context"

	"token-service/internal/domain/token"
)

// SchemaTables lists the tables Migrate creates, in creation order.
var SchemaTables = []string{"tokens", "permission_checks"}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tokens (
		token       TEXT PRIMARY KEY,
		permissions TEXT[] NOT NULL DEFAULT '{}',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT tokens_permissions_known CHECK (permissions <@ ARRAY['read', 'write']::TEXT[])
	)`,
	`CREATE TABLE IF NOT EXISTS permission_checks (
		id          UUID PRIMARY KEY,
		request_id  TEXT NOT NULL DEFAULT '',
		token       TEXT NOT NULL,
		permission  TEXT NOT NULL DEFAULT '',
		result      TEXT NOT NULL,
		status      INTEGER NOT NULL,
		ip_address  TEXT NOT NULL DEFAULT '',
		user_agent  TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_permission_checks_created_at ON permission_checks (created_at)`,
}

const (
	upsertTokenQuery = `
	INSERT INTO tokens (token, permissions) VALUES ($1, $2)
	ON CONFLICT (token) DO UPDATE SET permissions = EXCLUDED.permissions
`
	tableExistsQuery = `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_name = $1
	)`
)

// Migrate creates the tokens and permission_checks tables if missing.
func Migrate(ctx context.Context, db Querier) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return errFailedMigrate(err)
		}
	}
	return nil
}

// SeedTokens upserts tokens, replacing the permissions of existing rows.
func SeedTokens(ctx context.Context, db Querier, tokens []token.Token) error {
	for _, t := range tokens {
		perms := make([]string, len(t.Permissions))
		for i, p := range t.Permissions {
			perms[i] = p.String()
		}
		if _, err := db.Exec(ctx, upsertTokenQuery, t.ID, perms); err != nil {
			return errFailedSeedToken(t.ID, err)
		}
	}
	return nil
}

// TableExists reports whether a public table named table exists.
func TableExists(ctx context.Context, db Querier, table string) (bool, error) {
	rows, err := db.Query(ctx, tableExistsQuery, table)
	if err != nil {
		return false, errFailedCheckTable(table, err)
	}
	defer rows.Close()

	var exists bool
	if rows.Next() {
		if err := rows.Scan(&exists); err != nil {
			return false, errFailedCheckTable(table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return false, errFailedCheckTable(table, err)
	}
	return exists, nil
}
