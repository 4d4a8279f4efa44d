package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// TracingMiddleware starts New Relic transactions. With no application
// configured every middleware it returns passes requests through.
type TracingMiddleware struct {
	app *newrelic.Application
}

func NewTracingMiddleware(app *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{app: app}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// Transaction wraps each request in a New Relic transaction.
func (tm *TracingMiddleware) Transaction() echo.MiddlewareFunc {
	if tm.app == nil {
		return passThrough
	}
	return nrecho.Middleware(tm.app)
}

// Annotate records request metadata on the running transaction and
// reports handler errors to it.
func (tm *TracingMiddleware) Annotate() echo.MiddlewareFunc {
	if tm.app == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			attrs := map[string]any{
				"request.id":   GetRequestID(c),
				"client.ip":    c.RealIP(),
				"client.agent": c.Request().UserAgent(),
			}

			err := next(c)

			// The user is resolved by route-level Protect, after this runs.
			if id := GetUserID(c); id != "" {
				attrs["user.id"] = id
			}
			attrs["response.status"] = c.Response().Status
			for k, v := range attrs {
				if v != "" {
					txn.AddAttribute(k, v)
				}
			}
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}
			return err
		}
	}
}
