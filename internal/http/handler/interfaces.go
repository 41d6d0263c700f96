package handler

import (
	"context"

	"token-service/internal/audit"
	"token-service/internal/domain/token"

	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces defined by handlers

type PermissionValidator interface {
	Validate(raw *string) (token.Permission, error)
}

type TokenAccessManager interface {
	GetToken(ctx context.Context, tokenID string) (*token.Token, error)
	HasPermission(t *token.Token, perm token.Permission) bool
}

type AuditLogger interface {
	LogFromContext(c echo.Context, tokenID, permission string, result audit.Result, status int)
}

type DecisionRecorder interface {
	RecordDecision(result string)
}
