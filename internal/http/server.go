package http

import (
	"context"
	stdhttp "net/http"

	"token-service/internal/config"
	"token-service/internal/http/handler"
	"token-service/internal/http/middleware"
	"token-service/pkg/metrics"
	"token-service/pkg/profiling"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	requestBodyLimit = "1M"

	routeHasPermission = "/has_permission/:" + handler.ParamToken
	routeHealth        = "/health"
)

type ServerDependencies struct {
	Config            *config.Config
	PermissionHandler *handler.PermissionHandler
	Metrics           *metrics.Metrics
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first so every log line carries it
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}

	globalRateLimiter := middleware.NewRateLimiter(
		deps.Config.RateLimit.RequestsPerSecond,
		deps.Config.RateLimit.Burst,
	)
	e.Use(globalRateLimiter.Middleware())

	e.GET(routeHasPermission, deps.PermissionHandler.HasPermission)
	e.GET(routeHealth, healthCheck)

	strictRateLimiter := middleware.NewStrictRateLimiter()
	if deps.Metrics != nil {
		deps.Metrics.RegisterRoutes(e, strictRateLimiter.Middleware())
	}

	if deps.Config.Profiling.Enabled {
		profiling.RegisterPprofRoutes(e, strictRateLimiter.Middleware())
		profiling.RegisterMemoryRoutes(e)
	}

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
