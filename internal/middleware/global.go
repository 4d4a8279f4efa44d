package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/server"
	"github.com/deppfellow/tours-api/internal/storeerr"
	"github.com/deppfellow/tours-api/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Messages for token failures surfaced by Protect.
const (
	MsgTokenExpired = "Token expired. Please login again."
	MsgTokenInvalid = "Invalid token. Please login again."
)

// tokenErrors are the jwt failures reported as an invalid token.
var tokenErrors = []error{
	jwt.ErrTokenMalformed,
	jwt.ErrTokenUnverifiable,
	jwt.ErrTokenSignatureInvalid,
	jwt.ErrTokenInvalidClaims,
	jwt.ErrTokenRequiredClaimMissing,
	jwt.ErrTokenNotValidYet,
	jwt.ErrTokenUsedBeforeIssued,
	jwt.ErrTokenInvalidId,
	jwt.ErrTokenInvalidAudience,
	jwt.ErrTokenInvalidIssuer,
	jwt.ErrTokenInvalidSubject,
}

// GlobalMiddlewares groups the middleware every route runs through and the
// global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// RequestLogger writes one "API" line per request, at a level picked from
// the final status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// The error handler has not written the response yet when a
			// handler returns an error, so derive the status from the error.
			// https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				statusCode = resolve(v.Error, c.Request().RequestURI).Status
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}
			if userID := GetUserID(c); userID != "" {
				e = e.Str("user_id", userID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns panics into errors handled by GlobalErrorHandler.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// Request body caps. Multipart bodies carry file uploads and get the
// larger one.
const (
	JSONBodyLimit   = "10K"
	UploadBodyLimit = "5M"
)

// BodyLimit caps JSON bodies at JSONBodyLimit and multipart uploads at
// UploadBodyLimit.
func (global *GlobalMiddlewares) BodyLimit() echo.MiddlewareFunc {
	body := middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit:   JSONBodyLimit,
		Skipper: isMultipart,
	})
	upload := middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit:   UploadBodyLimit,
		Skipper: func(c echo.Context) bool { return !isMultipart(c) },
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return body(upload(next))
	}
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// GlobalErrorHandler writes the error envelope for every failed request.
//
// Operational errors keep their status and message. Anything that is not
// recognized becomes a 500 whose message is masked in production; the
// raw error is attached to the body only outside production.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := resolve(err, c.Request().RequestURI)
	production := global.server.Config.Primary.IsProduction()

	logger := GetLogger(c)
	event := logger.Warn()
	if httpErr.Status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}
	event.
		Err(err).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}

	body := errs.Response{
		Status:  errs.StatusText(httpErr.Status),
		Code:    httpErr.Code,
		Message: httpErr.Message,
		Errors:  httpErr.Errors,
		Action:  httpErr.Action,
	}
	if !production {
		body.Error = err.Error()
	} else if !operational(err) {
		body.Message = errs.MessageSomethingWentWrong
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}
	_ = c.JSON(httpErr.Status, body)
}

// resolve classifies err into the operational error sent to the client.
func resolve(err error, uri string) *errs.HTTPError {
	var (
		httpErr *errs.HTTPError
		echoErr *echo.HTTPError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr

	case isValidation(err):
		var mapped *errs.HTTPError
		if errors.As(validation.ToHTTPError(err), &mapped) {
			return mapped
		}

	case errors.Is(err, jwt.ErrTokenExpired):
		return errs.NewUnauthorizedError(MsgTokenExpired, true)

	case isTokenError(err):
		return errs.NewUnauthorizedError(MsgTokenInvalid, true)

	case errors.As(err, &echoErr):
		if echoErr.Code == http.StatusNotFound {
			return errs.New(http.StatusNotFound, fmt.Sprintf("Cannot find URL -> %s", uri))
		}
		message, ok := echoErr.Message.(string)
		if !ok {
			message = http.StatusText(echoErr.Code)
		}
		return errs.New(echoErr.Code, message)
	}

	if mapped, ok := storeerr.HandleError(err); ok {
		return mapped
	}

	unknown := errs.NewInternalServerError()
	unknown.Message = err.Error()
	return unknown
}

// operational reports whether err maps onto a known, client-safe error.
func operational(err error) bool {
	var (
		httpErr *errs.HTTPError
		echoErr *echo.HTTPError
	)
	if errors.As(err, &httpErr) || errors.As(err, &echoErr) || isValidation(err) || isTokenError(err) || errors.Is(err, jwt.ErrTokenExpired) {
		return true
	}
	_, ok := storeerr.HandleError(err)
	return ok
}

func isValidation(err error) bool {
	var custom validation.CustomValidationErrors
	return errors.As(err, &custom)
}

func isTokenError(err error) bool {
	for _, target := range tokenErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
