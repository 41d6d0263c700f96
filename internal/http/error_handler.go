package http

import (
	"errors"
	"fmt"
	"net/http"

	"token-service/internal/http/middleware"
	"token-service/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	jsonKeyError     = "error"
	jsonKeyRequestID = "request_id"
	unknownRequestID = "unknown"

	msgInternalError = "Internal server error"
)

// CustomHTTPErrorHandler handles errors returned by routing and middleware.
// Echo HTTP errors keep their status, anything else is a 500 whose detail is
// only logged. The permission handler writes its own replies, provider
// faults included.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := classify(err)

	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = unknownRequestID
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Errorf("internal_server_error request_id=%s status=%d error=%s",
			requestID, code, logger.SanitizeLogMessage(err.Error()))
		message = msgInternalError
	} else {
		c.Logger().Warnf("client_error request_id=%s status=%d error=%s",
			requestID, code, logger.SanitizeLogMessage(err.Error()))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]interface{}{
			jsonKeyError:     message,
			jsonKeyRequestID: requestID,
		})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func classify(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}
	return http.StatusInternalServerError, msgInternalError
}
