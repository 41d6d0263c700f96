package postgres

import (
	"context"

	"token-service/internal/audit"
)

const insertPermissionCheckQuery = `
	INSERT INTO permission_checks (
		id, request_id, token, permission, result, status, ip_address, user_agent, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// AuditRepository stores audit events in the permission_checks table.
type AuditRepository struct {
	db Querier
}

func NewAuditRepository(db Querier) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Write(ctx context.Context, event *audit.Event) error {
	_, err := r.db.Exec(ctx, insertPermissionCheckQuery,
		event.ID,
		event.RequestID,
		event.Token,
		event.Permission,
		event.Result,
		event.Status,
		event.IPAddress,
		event.UserAgent,
		event.CreatedAt,
	)
	if err != nil {
		return errFailedRecordDecision(err)
	}
	return nil
}
