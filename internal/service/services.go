package service

import (
	"context"

	"github.com/deppfellow/tours-api/internal/auth"
	"github.com/deppfellow/tours-api/internal/lib/email"
	"github.com/deppfellow/tours-api/internal/lib/job"
	"github.com/deppfellow/tours-api/internal/repository"
	"github.com/deppfellow/tours-api/internal/server"
)

type Services struct {
	Auth    *AuthService
	Tours   *TourService
	Users   *UserService
	Reviews *ReviewService
	Job     *job.JobService
}

// NewService wires the services from the server's resources.
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	opts := &Options{
		Tokens:   auth.NewTokenIssuer(s.Config.Auth.JWTSecret, s.Config.Auth.JWTExpiresIn),
		Hasher:   auth.NewPasswordHasher(s.Config.Auth.BcryptCost),
		Mailer:   s.Email,
		Welcome:  inlineWelcome{emails: s.Email},
		ResetTTL: s.Config.Auth.PasswordResetTTL,
		Logger:   s.Logger,
	}
	if s.Job != nil {
		opts.Welcome = s.Job
	}
	if s.Storage != nil {
		opts.Photos = s.Storage
	}

	services := New(repos, opts)
	services.Job = s.Job
	return services, nil
}

// New builds the services on explicit collaborators.
func New(repos *repository.Repositories, opts *Options) *Services {
	return &Services{
		Auth:    NewAuthService(repos, opts),
		Tours:   NewTourService(repos, opts),
		Users:   NewUserService(repos, opts),
		Reviews: NewReviewService(repos, opts),
	}
}

// inlineWelcome sends the welcome email during the request when no job
// queue is available.
type inlineWelcome struct {
	emails *email.Client
}

func (w inlineWelcome) EnqueueWelcomeEmail(ctx context.Context, to, name string) error {
	return w.emails.SendWelcomeEmail(ctx, to, name)
}
