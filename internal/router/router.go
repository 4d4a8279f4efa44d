// Package router builds the echo instance: the middleware chain, the
// system routes and the versioned API routes.
package router

import (
	"time"

	"github.com/deppfellow/tours-api/internal/handler"
	"github.com/deppfellow/tours-api/internal/middleware"
	"github.com/deppfellow/tours-api/internal/server"
	"github.com/deppfellow/tours-api/internal/service"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	return newRouter(h, middleware.NewMiddlewares(s, services.Auth), time.Now)
}

func newRouter(h *handler.Handlers, m *middleware.Middlewares, now func() time.Time) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = m.Global.GlobalErrorHandler

	router.Use(
		m.Global.CORS(),
		m.Global.Secure(),
		middleware.RequestID(),
		middleware.RequestTime(now),
		m.Tracing.Transaction(),
		m.Tracing.Annotate(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.RequestLogger(),
		m.Global.Recover(),
		m.Global.BodyLimit(),
		m.Metrics.Collect(),
	)

	registerSystemRoutes(router, h, m)

	api := router.Group("/api", m.RateLimit.Limit())
	registerV1Routes(api.Group("/v1"), h, m)

	return router
}
