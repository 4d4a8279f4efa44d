package memory

import (
	"github.com/deppfellow/tours-api/internal/repository"
)

// NewRepositories returns empty in-memory repositories sharing one user
// collection for review author population.
func NewRepositories() *repository.Repositories {
	users := NewUserStore()
	return &repository.Repositories{
		Tours:   NewTourStore(),
		Users:   users,
		Reviews: NewReviewStore(users),
	}
}

var (
	_ repository.TourStore   = (*TourStore)(nil)
	_ repository.UserStore   = (*UserStore)(nil)
	_ repository.ReviewStore = (*ReviewStore)(nil)
)
