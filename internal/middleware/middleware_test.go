package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/tours-api/internal/config"
	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/server"
	"github.com/deppfellow/tours-api/internal/storeerr"
	"github.com/deppfellow/tours-api/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testServer(env string) *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary:   config.Primary{Env: env},
			RateLimit: &config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Hour},
		},
		Logger: &logger,
	}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) errs.Response {
	t.Helper()
	var body errs.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		err         error
		wantStatus  int
		wantMessage string
		wantStatusW string
	}{
		{
			name:        "operational",
			env:         "development",
			err:         errs.NewBadRequestError("bad input", nil, nil, nil),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "bad input",
			wantStatusW: "fail",
		},
		{
			name:        "validation",
			env:         "development",
			err:         validation.CustomValidationErrors{{Field: "name", Message: "is required"}},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid input data. name is required",
			wantStatusW: "fail",
		},
		{
			name:        "expired token",
			env:         "development",
			err:         jwt.ErrTokenExpired,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgTokenExpired,
			wantStatusW: "fail",
		},
		{
			name:        "malformed token",
			env:         "development",
			err:         errors.Join(jwt.ErrTokenMalformed, errors.New("bad segment")),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgTokenInvalid,
			wantStatusW: "fail",
		},
		{
			name:        "not found document",
			env:         "development",
			err:         &storeerr.NotFoundError{Collection: "tours"},
			wantStatus:  http.StatusNotFound,
			wantMessage: storeerr.MessageNotFound,
			wantStatusW: "fail",
		},
		{
			name:        "duplicate",
			env:         "development",
			err:         &storeerr.DuplicateError{Collection: "tours", Field: "name", Value: "The Forest Hiker"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: `Duplicate field value: "The Forest Hiker". Please use another value.`,
			wantStatusW: "fail",
		},
		{
			name:        "unknown in development",
			env:         "development",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "boom",
			wantStatusW: "error",
		},
		{
			name:        "unknown in production",
			env:         "production",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: errs.MessageSomethingWentWrong,
			wantStatusW: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho(testServer(tt.env))
			e.GET("/boom", func(c echo.Context) error { return tt.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantStatusW, body.Status)
			if tt.env == "production" {
				assert.Nil(t, body.Error)
			} else {
				assert.NotNil(t, body.Error)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	e := newEcho(testServer("development"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Cannot find URL -> /api/v1/nowhere", decode(t, rec).Message)
}

type fakeAuthenticator struct {
	users map[string]*model.User
}

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*model.User, error) {
	if user, ok := f.users[token]; ok {
		return user, nil
	}
	return nil, jwt.ErrTokenSignatureInvalid
}

func TestProtectAndRestrictTo(t *testing.T) {
	s := testServer("development")
	admin := &model.User{ID: primitive.NewObjectID(), Role: model.RoleAdmin}
	user := &model.User{ID: primitive.NewObjectID(), Role: model.RoleUser}
	auth := NewAuthMiddleware(s, fakeAuthenticator{users: map[string]*model.User{
		"admin-token": admin,
		"user-token":  user,
	}})

	e := newEcho(s)
	e.GET("/admin", func(c echo.Context) error {
		return c.String(http.StatusOK, GetUserID(c))
	}, auth.Protect, RestrictTo(model.RoleAdmin, model.RoleLeadGuide))

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantMessage string
	}{
		{name: "no header", wantStatus: http.StatusUnauthorized, wantMessage: MsgLoginRequired},
		{name: "wrong scheme", header: "Basic admin-token", wantStatus: http.StatusUnauthorized, wantMessage: MsgLoginRequired},
		{name: "invalid token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantMessage: MsgTokenInvalid},
		{name: "wrong role", header: "Bearer user-token", wantStatus: http.StatusForbidden, wantMessage: MsgForbidden},
		{name: "allowed", header: "Bearer admin-token", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, admin.ID.Hex(), rec.Body.String())
				return
			}
			assert.Equal(t, tt.wantMessage, decode(t, rec).Message)
		})
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, GetRequestID(c)) }, RequestID())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Body.String())
}

func TestRedisRateLimitStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zerolog.Nop()
	store := NewRedisRateLimitStore(client, 2, time.Hour, &logger)
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		ok, err := store.Allow("10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "request %d", i+1)
	}

	ok, err := store.Allow("10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "other clients have their own window")

	now = now.Add(time.Hour)
	ok, err = store.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts fresh")

	mr.Close()
	ok, err = store.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "store failures let requests through")
}

func TestRateLimitMemoryFallback(t *testing.T) {
	s := testServer("development")
	limiter := NewRateLimitMiddleware(s)

	e := newEcho(s)
	e.GET("/api/v1/tours", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, limiter.Limit())

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil))
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, MsgTooManyRequests, decode(t, rec).Message)
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestMetricsCollect(t *testing.T) {
	m := NewMetricsMiddleware()
	e := newEcho(testServer("development"))
	e.Use(m.Collect())
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/ping",status="204"} 1`)
}
