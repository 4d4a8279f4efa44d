package main

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/tours-api/internal/config"
	"github.com/deppfellow/tours-api/internal/logger"
	"github.com/deppfellow/tours-api/internal/repository"
	"github.com/deppfellow/tours-api/internal/repository/memory"
	"github.com/deppfellow/tours-api/internal/server"
	"github.com/deppfellow/tours-api/internal/service"
)

const shutdownTimeout = 30 * time.Second

// app is the wired dependency graph every command starts from.
type app struct {
	server   *server.Server
	repos    *repository.Repositories
	services *service.Services
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	repos := memory.NewRepositories()
	if srv.DB != nil {
		repos = repository.NewRepositories(srv)
	}

	services, err := service.NewService(srv, repos)
	if err != nil {
		return nil, fmt.Errorf("could not create services: %w", err)
	}

	return &app{server: srv, repos: repos, services: services}, nil
}

// close releases the server's dependencies outside of a serve run.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.server.Logger.Error().Err(err).Msg("shutdown failed")
	}
	a.server.LoggerService.Shutdown()
}
