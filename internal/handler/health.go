package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/tours-api/internal/config"
	"github.com/deppfellow/tours-api/internal/middleware"
	"github.com/deppfellow/tours-api/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the service and its dependencies are
// reachable.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(s)}
}

// probe pings one dependency. required marks dependencies whose failure
// makes the service unhealthy.
type probe struct {
	name     string
	required bool
	ping     func(ctx context.Context) error
}

func (h *HealthHandler) probes() []probe {
	var probes []probe

	if h.server.DB != nil {
		probes = append(probes, probe{name: "database", required: true, ping: h.server.DB.Ping})
	} else {
		probes = append(probes, probe{name: "database", required: true, ping: func(context.Context) error { return nil }})
	}
	if h.server.Redis != nil {
		probes = append(probes, probe{name: "redis", ping: func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		}})
	}
	if h.server.Storage != nil {
		probes = append(probes, probe{name: "storage", ping: h.server.Storage.Ping})
	}
	return probes
}

func enabled(cfg *config.Config, name string) bool {
	if cfg.Observability == nil || len(cfg.Observability.HealthChecks.Checks) == 0 {
		return true
	}
	for _, check := range cfg.Observability.HealthChecks.Checks {
		if check == name {
			return true
		}
	}
	return false
}

// CheckHealth answers 200 when every required dependency responds and 503
// otherwise. Optional dependencies are reported but never fail the check.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	timeout := 5 * time.Second
	if obs := h.server.Config.Observability; obs != nil && obs.HealthChecks.Timeout > 0 {
		timeout = obs.HealthChecks.Timeout
	}

	checks := map[string]any{}
	healthy := true

	for _, p := range h.probes() {
		if !enabled(h.server.Config, p.name) {
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		probeStart := time.Now()
		err := p.ping(ctx)
		cancel()

		if err == nil {
			checks[p.name] = map[string]any{
				"status":        "healthy",
				"response_time": time.Since(probeStart).String(),
			}
			continue
		}

		checks[p.name] = map[string]any{
			"status":        "unhealthy",
			"response_time": time.Since(probeStart).String(),
			"error":         err.Error(),
		}
		if p.required {
			healthy = false
		}

		logger.Error().
			Err(err).
			Str("check", p.name).
			Dur("response_time", time.Since(probeStart)).
			Msg("health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]any{
				"check_type":       p.name,
				"operation":        "health_check",
				"error_type":       p.name + "_unhealthy",
				"response_time_ms": time.Since(probeStart).Milliseconds(),
				"error_message":    err.Error(),
			})
		}
	}

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"database":    h.server.Config.Database.Driver,
		"checks":      checks,
	}

	if !healthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("service unhealthy")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}
