package repository

import (
	"github.com/deppfellow/tours-api/internal/database"
	"github.com/deppfellow/tours-api/internal/server"
)

// Repositories is the container handed to the service layer.
type Repositories struct {
	Tours   TourStore
	Users   UserStore
	Reviews ReviewStore
}

// NewRepositories builds the Mongo backed repositories from the server's
// database.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Tours:   NewTourRepository(s.DB.Collection(database.ToursCollection)),
		Users:   NewUserRepository(s.DB.Collection(database.UsersCollection)),
		Reviews: NewReviewRepository(s.DB.Collection(database.ReviewsCollection), database.UsersCollection),
	}
}
