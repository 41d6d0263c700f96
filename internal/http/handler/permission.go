package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"token-service/internal/audit"
	"token-service/internal/domain/token"
	"token-service/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	ParamToken      = "token"
	QueryPermission = "permission"

	msgInvalidPermission   = "Invalid 'permission' query parameter. Allowed values are 'read' or 'write'."
	msgTokenNotFound       = "Token not found."
	msgPermissionDeniedFmt = "The token does not have the required '%s' permission."
	msgInternalError       = "Internal server error."
)

// Decision is the result of one permission check. Reason is set exactly
// when Granted is false.
type Decision struct {
	Result     audit.Result
	Status     int
	Permission token.Permission
	Granted    bool
	Reason     *string
}

func reject(result audit.Result, status int, perm token.Permission, reason string) *Decision {
	return &Decision{
		Result:     result,
		Status:     status,
		Permission: perm,
		Reason:     &reason,
	}
}

type PermissionHandler struct {
	validator PermissionValidator
	manager   TokenAccessManager
	audit     AuditLogger
	metrics   DecisionRecorder
}

// NewPermissionHandler wires the check pipeline. auditLogger and recorder may be nil.
func NewPermissionHandler(validator PermissionValidator, manager TokenAccessManager, auditLogger AuditLogger, recorder DecisionRecorder) *PermissionHandler {
	return &PermissionHandler{
		validator: validator,
		manager:   manager,
		audit:     auditLogger,
		metrics:   recorder,
	}
}

// Check validates rawPermission, resolves tokenID and evaluates the grant.
// The returned error is non-nil only when the token provider fails.
func (h *PermissionHandler) Check(ctx context.Context, tokenID string, rawPermission *string) (*Decision, error) {
	perm, err := h.validator.Validate(rawPermission)
	if err != nil {
		return reject(audit.ResultBadRequest, http.StatusBadRequest, "", msgInvalidPermission), nil
	}

	t, err := h.manager.GetToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	// Unknown tokens are an unprocessable reference, not a denial.
	if t == nil {
		return reject(audit.ResultTokenNotFound, http.StatusUnprocessableEntity, perm, msgTokenNotFound), nil
	}

	if !h.manager.HasPermission(t, perm) {
		return reject(audit.ResultDenied, http.StatusOK, perm, fmt.Sprintf(msgPermissionDeniedFmt, perm)), nil
	}

	return &Decision{
		Result:     audit.ResultGranted,
		Status:     http.StatusOK,
		Permission: perm,
		Granted:    true,
	}, nil
}

// HasPermission serves GET /has_permission/:token?permission=read|write
func (h *PermissionHandler) HasPermission(c echo.Context) error {
	tokenID := pathParam(c, ParamToken)
	rawPermission := queryParam(c, QueryPermission)

	decision, err := h.Check(c.Request().Context(), tokenID, rawPermission)
	if err != nil {
		c.Logger().Errorf("permission check failed for token %s: %v", logger.MaskToken(tokenID), logger.SanitizeLogMessage(err.Error()))
		h.record(c, tokenID, auditPermission(rawPermission, ""), audit.ResultError, http.StatusInternalServerError)
		msg := msgInternalError
		return respondPermission(c, http.StatusInternalServerError, false, &msg)
	}

	if decision.Result == audit.ResultBadRequest {
		c.Logger().Debugf("rejected permission value for token %s", logger.MaskToken(tokenID))
	}

	h.record(c, tokenID, auditPermission(rawPermission, decision.Permission), decision.Result, decision.Status)
	return respondPermission(c, decision.Status, decision.Granted, decision.Reason)
}

func (h *PermissionHandler) record(c echo.Context, tokenID, permission string, result audit.Result, status int) {
	if h.metrics != nil {
		h.metrics.RecordDecision(string(result))
	}
	if h.audit != nil {
		h.audit.LogFromContext(c, tokenID, permission, result, status)
	}
}

// auditPermission prefers the validated permission and falls back to what
// the caller sent.
func auditPermission(raw *string, validated token.Permission) string {
	if validated != "" {
		return string(validated)
	}
	if raw != nil {
		return *raw
	}
	return ""
}

// pathParam returns the decoded path parameter. Echo routes on URL.RawPath
// when it is set, leaving the parameter escaped; otherwise the value is
// already decoded and must not be unescaped again.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// queryParam distinguishes an absent parameter (nil) from an empty one.
func queryParam(c echo.Context, name string) *string {
	values, ok := c.QueryParams()[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
