// Package server composes the application's shared resources and owns
// their lifecycle:
//
//   - configuration
//   - logger and the optional New Relic service
//   - Mongo database (absent with the memory driver)
//   - Redis client and the Asynq job service (absent without Redis)
//   - email client and optional object storage
//   - the http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/tours-api/internal/config"
	"github.com/deppfellow/tours-api/internal/database"
	"github.com/deppfellow/tours-api/internal/lib/email"
	"github.com/deppfellow/tours-api/internal/lib/job"
	"github.com/deppfellow/tours-api/internal/lib/storage"
	loggerPkg "github.com/deppfellow/tours-api/internal/logger"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const startupTimeout = 5 * time.Second

// Server is the application container. It is not the HTTP server itself.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// DB is nil when running with the memory driver.
	DB *database.Database

	// Redis and Job are nil when no Redis address is configured.
	Redis *redis.Client
	Job   *job.JobService

	Email *email.Client

	// Storage is nil unless object storage is configured.
	Storage *storage.Storage

	httpServer *http.Server
}

// New connects every configured dependency. The database is required when
// the mongo driver is selected; Redis and storage failures are logged and
// the features depending on them are disabled.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Email:         email.NewClient(cfg, logger),
	}

	if cfg.Database.Driver == config.DriverMongo {
		db, err := database.New(cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.DB = db
	} else {
		logger.Warn().Msg("using in-memory repositories, data is lost on restart")
	}

	if cfg.Redis.Address != "" {
		s.Redis = newRedis(cfg, logger, loggerService)

		s.Job = job.NewJobService(logger, cfg, s.Email)
		if err := s.Job.Start(); err != nil {
			return nil, fmt.Errorf("failed to start job service: %w", err)
		}
	}

	if cfg.Storage.Enabled() {
		s.Storage = newStorage(cfg, logger)
	}

	return s, nil
}

func newRedis(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address})
	if loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("failed to connect to Redis, rate limits fail open until it is reachable")
	}
	return client
}

func newStorage(cfg *config.Config, logger *zerolog.Logger) *storage.Storage {
	st, err := storage.New(cfg.Storage, logger)
	if err != nil {
		logger.Error().Err(err).Msg("photo uploads disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := st.EnsureBucket(ctx); err != nil {
		logger.Error().Err(err).Msg("photo uploads disabled")
		return nil
	}
	return st
}

// SetupHTTPServer wraps handler in an http.Server using the configured
// timeouts (seconds).
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("database", s.Config.Database.Driver).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests then releases every dependency.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Error().Err(err).Msg("failed to close redis client")
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(ctx); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
