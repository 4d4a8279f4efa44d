package handler

import (
	"github.com/deppfellow/tours-api/internal/server"
	"github.com/deppfellow/tours-api/internal/service"
)

// Handlers groups every HTTP handler so the router takes one value.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Auth    *AuthHandler
	Users   *UserHandler
	Tours   *TourHandler
	Reviews *ReviewHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	h := NewHandler(s)
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s, StaticDir),
		Auth:    NewAuthHandler(h, services.Auth),
		Users:   NewUserHandler(h, services.Users),
		Tours:   NewTourHandler(h, services.Tours),
		Reviews: NewReviewHandler(h, services.Reviews),
	}
}
