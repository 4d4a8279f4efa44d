package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

const RequestTimeKey = "request_time"

// RequestTime stamps the request with its arrival time; success
// responses echo it back as requestTime.
func RequestTime(now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(RequestTimeKey, now().UTC())
			return next(c)
		}
	}
}

// GetRequestTime returns the time stamped by RequestTime, zero if unset.
func GetRequestTime(c echo.Context) time.Time {
	if t, ok := c.Get(RequestTimeKey).(time.Time); ok {
		return t
	}
	return time.Time{}
}
