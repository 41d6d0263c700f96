package handler

import (
	"github.com/labstack/echo/v4"
)

// PermissionResponse is the wire shape of every /has_permission reply.
// Error marshals as null when the permission is granted.
type PermissionResponse struct {
	Permission bool    `json:"permission"`
	Error      *string `json:"error"`
}

func respondPermission(c echo.Context, status int, granted bool, reason *string) error {
	return c.JSON(status, PermissionResponse{Permission: granted, Error: reason})
}
