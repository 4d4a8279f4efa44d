package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/tours-api/internal/auth"
	"github.com/deppfellow/tours-api/internal/config"
	"github.com/deppfellow/tours-api/internal/handler"
	"github.com/deppfellow/tours-api/internal/lib/email"
	"github.com/deppfellow/tours-api/internal/middleware"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/repository/memory"
	"github.com/deppfellow/tours-api/internal/server"
	"github.com/deppfellow/tours-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var resetLink = regexp.MustCompile(`reset-password/([0-9a-f]+)`)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type outbox struct {
	mu   sync.Mutex
	sent []email.Message
}

func (o *outbox) Send(_ context.Context, msg email.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) last() email.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent[len(o.sent)-1]
}

type noWelcome struct{}

func (noWelcome) EnqueueWelcomeEmail(context.Context, string, string) error { return nil }

type photoBucket struct {
	mu     sync.Mutex
	stored map[string]int64
}

func (b *photoBucket) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stored == nil {
		b.stored = map[string]int64{}
	}
	b.stored[key] = n
	return "https://photos.example.com/" + key, nil
}

type app struct {
	echo     *echo.Echo
	services *service.Services
	clock    *clock
	outbox   *outbox
}

func newApp(t *testing.T, configure ...func(*service.Options)) *app {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary:   config.Primary{Env: "development"},
			Server:    config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
			Database:  config.DatabaseConfig{Driver: config.DriverMemory},
			RateLimit: &config.RateLimitConfig{Enabled: true, Requests: 1000, Window: time.Hour},
		},
		Logger: &logger,
	}

	clk := &clock{t: time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)}
	mail := &outbox{}
	opts := &service.Options{
		Tokens:   auth.NewTokenIssuer("a-very-long-secret-used-only-in-tests", time.Hour).WithClock(clk.Now),
		Hasher:   auth.NewPasswordHasher(bcrypt.MinCost),
		Mailer:   mail,
		Welcome:  noWelcome{},
		ResetTTL: 90 * time.Minute,
		Now:      clk.Now,
		Logger:   &logger,
	}
	for _, fn := range configure {
		fn(opts)
	}
	services := service.New(memory.NewRepositories(), opts)

	h := handler.NewHandlers(s, services)
	e := newRouter(h, middleware.NewMiddlewares(s, services.Auth), clk.Now)
	return &app{echo: e, services: services, clock: clk, outbox: mail}
}

func (a *app) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (a *app) upload(t *testing.T, path, token, contentType string, content []byte) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="photo"; filename="me.jpg"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set(echo.HeaderContentType, form.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (a *app) signup(t *testing.T, name, addr string) string {
	t.Helper()
	status, body := a.do(t, http.MethodPost, "/api/v1/users/signup", "", map[string]string{
		"name":            name,
		"email":           addr,
		"password":        "pass1234",
		"passwordConfirm": "pass1234",
	})
	require.Equal(t, http.StatusCreated, status, body)
	return data(body)["token"].(string)
}

func (a *app) admin(t *testing.T) string {
	t.Helper()
	token := a.signup(t, "Ada Admin", "admin@example.com")
	_, err := a.services.Users.Promote(context.Background(), "admin@example.com", model.RoleAdmin)
	require.NoError(t, err)
	return token
}

func (a *app) createTour(t *testing.T, token, name string, price float64) string {
	t.Helper()
	status, body := a.do(t, http.MethodPost, "/api/v1/tours", token, map[string]any{
		"tour": map[string]any{
			"name":         name,
			"duration":     7,
			"maxGroupSize": 12,
			"difficulty":   "easy",
			"price":        price,
			"summary":      "Breathtaking hike",
			"description":  "A long walk",
			"imageCover":   "cover.jpg",
		},
	})
	require.Equal(t, http.StatusCreated, status, body)
	return data(body)["tour"].(map[string]any)["id"].(string)
}

func data(body map[string]any) map[string]any {
	return body["data"].(map[string]any)
}

func TestProtectedRouteRequiresLogin(t *testing.T) {
	a := newApp(t)

	status, body := a.do(t, http.MethodGet, "/api/v1/tours/5c88fa8cf4afda39709c2955", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, middleware.MsgLoginRequired, body["message"])
}

func TestUnknownRoute(t *testing.T) {
	a := newApp(t)

	status, body := a.do(t, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Cannot find URL -> /api/v1/nowhere", body["message"])
}

func TestSignupLoginAndMe(t *testing.T) {
	a := newApp(t)
	a.signup(t, "Jane Doe", "jane@example.com")

	status, body := a.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email": "jane@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, service.MsgInvalidCredentials, body["message"])

	status, body = a.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email": "jane@example.com", "password": "pass1234",
	})
	require.Equal(t, http.StatusOK, status)
	token := data(body)["token"].(string)

	status, body = a.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	user := data(body)["user"].(map[string]any)
	assert.Equal(t, "jane@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotEmpty(t, body["requestTime"])
}

func TestSignupRejectsMismatchedPasswords(t *testing.T) {
	a := newApp(t)

	status, body := a.do(t, http.MethodPost, "/api/v1/users/signup", "", map[string]string{
		"name": "Jane Doe", "email": "jane@example.com", "password": "pass1234", "passwordConfirm": "pass4321",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["message"], handler.MsgPasswordMismatch)
}

func TestSignupRejectsOverlongPassword(t *testing.T) {
	a := newApp(t)
	password := strings.Repeat("p", 80)

	status, body := a.do(t, http.MethodPost, "/api/v1/users/signup", "", map[string]string{
		"name": "Jane Doe", "email": "jane@example.com", "password": password, "passwordConfirm": password,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "fail", body["status"])
	assert.Contains(t, body["message"], "password must not exceed 72 characters")
}

func TestUpdatePhoto(t *testing.T) {
	bucket := &photoBucket{}
	a := newApp(t, func(o *service.Options) { o.Photos = bucket })
	token := a.signup(t, "Jane Doe", "jane@example.com")
	image := bytes.Repeat([]byte{0xff}, 50*1024)

	status, body := a.upload(t, "/api/v1/users/update-photo", token, "image/jpeg", image)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, handler.MsgPhotoUpdated, body["message"])

	photo := data(body)["user"].(map[string]any)["photo"].(string)
	assert.True(t, strings.HasPrefix(photo, "https://photos.example.com/"))
	require.Len(t, bucket.stored, 1)
	for _, n := range bucket.stored {
		assert.EqualValues(t, len(image), n)
	}

	status, body = a.upload(t, "/api/v1/users/update-photo", token, "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.MsgNotAnImage, body["message"])
}

func TestUpdatePhotoNeedsStore(t *testing.T) {
	a := newApp(t)
	token := a.signup(t, "Jane Doe", "jane@example.com")

	status, _ := a.upload(t, "/api/v1/users/update-photo", token, "image/jpeg", []byte{0xff})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestJSONBodyLimit(t *testing.T) {
	a := newApp(t)

	status, _ := a.do(t, http.MethodPost, "/api/v1/users/signup", "", map[string]string{
		"name": strings.Repeat("n", 20*1024), "email": "jane@example.com", "password": "pass1234", "passwordConfirm": "pass1234",
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
}

func TestTourRoutesRestrictWrites(t *testing.T) {
	a := newApp(t)
	user := a.signup(t, "Jane Doe", "jane@example.com")

	status, _ := a.do(t, http.MethodPost, "/api/v1/tours", user, map[string]any{"tour": map[string]any{"name": "x"}})
	assert.Equal(t, http.StatusForbidden, status)

	admin := a.admin(t)
	status, body := a.do(t, http.MethodPost, "/api/v1/tours", admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, handler.MsgInvalidTourBody, body["message"])
}

func TestTourListing(t *testing.T) {
	a := newApp(t)
	admin := a.admin(t)
	for _, tour := range []struct {
		name  string
		price float64
	}{
		{"The Sea Explorer", 497},
		{"The Forest Hiker", 397},
		{"The Snow Adventurer", 997},
		{"The City Wanderer", 1197},
	} {
		a.createTour(t, admin, tour.name, tour.price)
	}

	status, body := a.do(t, http.MethodGet, "/api/v1/tours?price[lt]=1000&sort=price&fields=name,price&page=1&limit=2", admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, handler.MsgToursRetrieved, body["message"])
	assert.EqualValues(t, 2, body["results"])
	assert.EqualValues(t, 1, body["currentPage"])

	tours := data(body)["tours"].([]any)
	first := tours[0].(map[string]any)
	assert.Equal(t, "The Forest Hiker", first["name"])
	assert.NotContains(t, first, "summary")
	assert.NotContains(t, first, "durationWeeks")
	assert.Contains(t, first, "id")

	status, body = a.do(t, http.MethodGet, "/api/v1/tours", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No value specified for 'page' or 'limit'", body["message"])

	status, _ = a.do(t, http.MethodGet, "/api/v1/tours?page=&limit=3", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.do(t, http.MethodGet, "/api/v1/tours/basic-metrics", "", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, handler.MsgTourMetrics, body["message"])
}

func TestTourPriceRangeScenario(t *testing.T) {
	a := newApp(t)
	admin := a.admin(t)
	for i, price := range []float64{50, 150, 300, 450, 700, 250} {
		a.createTour(t, admin, "The Scenic Tour "+string(rune('A'+i)), price)
	}

	status, body := a.do(t, http.MethodGet, "/api/v1/tours?price[gte]=100&price[lte]=500&sort=-price&page=1&limit=3", admin, nil)
	require.Equal(t, http.StatusOK, status, body)

	var prices []float64
	for _, tour := range data(body)["tours"].([]any) {
		prices = append(prices, tour.(map[string]any)["price"].(float64))
	}
	assert.Equal(t, []float64{450, 300, 250}, prices)
}

func TestTopCheapAlias(t *testing.T) {
	a := newApp(t)
	admin := a.admin(t)
	a.createTour(t, admin, "The Sea Explorer", 497)
	a.createTour(t, admin, "The Forest Hiker", 397)

	status, body := a.do(t, http.MethodGet, "/api/v1/tours/top-5-cheap", "", nil)
	require.Equal(t, http.StatusOK, status, body)

	tours := data(body)["tours"].([]any)
	require.Len(t, tours, 2)
	first := tours[0].(map[string]any)
	assert.Equal(t, "The Forest Hiker", first["name"])
	assert.Contains(t, first, "durationWeeks")
	assert.NotContains(t, first, "description")
}

func TestPasswordResetExpires(t *testing.T) {
	a := newApp(t)
	a.signup(t, "Jane Doe", "jane@example.com")

	status, body := a.do(t, http.MethodPost, "/api/v1/users/forgot-password", "", map[string]string{"email": "jane@example.com"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, handler.MsgResetTokenSent, body["message"])

	match := resetLink.FindStringSubmatch(a.outbox.last().Text)
	require.Len(t, match, 2)

	a.clock.Advance(91 * time.Minute)
	status, body = a.do(t, http.MethodPatch, "/api/v1/users/reset-password/"+match[1], "", map[string]string{
		"password": "newpass123", "passwordConfirm": "newpass123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.MsgInvalidResetToken, body["message"])
}

func TestPasswordResetSucceeds(t *testing.T) {
	a := newApp(t)
	a.signup(t, "Jane Doe", "jane@example.com")

	status, _ := a.do(t, http.MethodPost, "/api/v1/users/forgot-password", "", map[string]string{"email": "jane@example.com"})
	require.Equal(t, http.StatusOK, status)
	match := resetLink.FindStringSubmatch(a.outbox.last().Text)
	require.Len(t, match, 2)

	a.clock.Advance(10 * time.Minute)
	status, body := a.do(t, http.MethodPatch, "/api/v1/users/reset-password/"+match[1], "", map[string]string{
		"password": "newpass123", "passwordConfirm": "newpass123",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.NotEmpty(t, data(body)["token"])

	status, _ = a.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email": "jane@example.com", "password": "newpass123",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestReviewUpdatesTourRatings(t *testing.T) {
	a := newApp(t)
	admin := a.admin(t)
	tourID := a.createTour(t, admin, "The Forest Hiker", 397)
	user := a.signup(t, "Jane Doe", "jane@example.com")

	status, body := a.do(t, http.MethodPost, "/api/v1/tours/"+tourID+"/reviews", user, map[string]any{
		"review": "Loved it", "rating": 5,
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, handler.MsgReviewAdded, body["message"])
	reviewID := data(body)["review"].(map[string]any)["id"].(string)

	status, body = a.do(t, http.MethodGet, "/api/v1/tours/"+tourID+"/reviews?page=1&limit=5&fields=rating", user, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, handler.MsgReviewsRetrieved, body["message"])
	listed := data(body)["reviews"].([]any)
	require.Len(t, listed, 1)
	assert.Equal(t, map[string]any{"id": reviewID, "rating": float64(5)}, listed[0])

	status, body = a.do(t, http.MethodGet, "/api/v1/tours/"+tourID, user, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, handler.MsgTourRetrieved, body["message"])
	tour := data(body)["tour"].(map[string]any)
	assert.EqualValues(t, 5, tour["ratingsAverage"])
	assert.EqualValues(t, 1, tour["ratingsQuantity"])
	assert.Len(t, tour["reviews"], 1)

	other := a.signup(t, "John Roe", "john@example.com")
	status, body = a.do(t, http.MethodPatch, "/api/v1/reviews/"+reviewID, other, map[string]any{"rating": 1})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, service.MsgNotReviewAuthor, body["message"])

	status, _ = a.do(t, http.MethodDelete, "/api/v1/reviews/"+reviewID, user, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = a.do(t, http.MethodGet, "/api/v1/tours/"+tourID+"/reviews?page=1&limit=5", user, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 0, body["results"])

	status, body = a.do(t, http.MethodGet, "/api/v1/tours/"+tourID, user, nil)
	require.Equal(t, http.StatusOK, status, body)
	tour = data(body)["tour"].(map[string]any)
	assert.EqualValues(t, 4.5, tour["ratingsAverage"])
	assert.EqualValues(t, 0, tour["ratingsQuantity"])
}

func TestAdminUserRoutes(t *testing.T) {
	a := newApp(t)
	admin := a.admin(t)
	a.signup(t, "Jane Doe", "jane@example.com")

	status, body := a.do(t, http.MethodGet, "/api/v1/users?page=1&limit=10&sort=name", admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 2, body["results"])

	users := data(body)["users"].([]any)
	janeID := users[1].(map[string]any)["id"].(string)

	status, body = a.do(t, http.MethodPatch, "/api/v1/users/"+janeID, admin, map[string]any{"role": "guide"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "guide", data(body)["data"].(map[string]any)["role"])

	status, _ = a.do(t, http.MethodDelete, "/api/v1/users/"+janeID, admin, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = a.do(t, http.MethodGet, "/api/v1/users/"+janeID, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteAccountDeactivates(t *testing.T) {
	a := newApp(t)
	token := a.signup(t, "Jane Doe", "jane@example.com")

	status, _ := a.do(t, http.MethodDelete, "/api/v1/users/delete-account", token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = a.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSystemRoutes(t *testing.T) {
	a := newApp(t)

	status, body := a.do(t, http.MethodGet, "/status", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, config.DriverMemory, body["database"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
