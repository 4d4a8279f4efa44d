// Package service contains the business logic.
//
// It sits between the handler and repository layers: handlers pass it
// validated input, services enforce the domain rules and call the
// repositories.
package service

import (
	"context"
	"io"
	"time"

	"github.com/deppfellow/tours-api/internal/auth"
	"github.com/deppfellow/tours-api/internal/lib/email"
	"github.com/rs/zerolog"
)

// Mailer delivers an email synchronously.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

// WelcomeNotifier schedules the welcome email of a new account.
type WelcomeNotifier interface {
	EnqueueWelcomeEmail(ctx context.Context, to, name string) error
}

// PhotoStore keeps uploaded user photos.
type PhotoStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// Options carries the collaborators shared by the services. Welcome and
// Photos may be nil.
type Options struct {
	Tokens   *auth.TokenIssuer
	Hasher   *auth.PasswordHasher
	Mailer   Mailer
	Welcome  WelcomeNotifier
	Photos   PhotoStore
	ResetTTL time.Duration
	Now      func() time.Time
	Logger   *zerolog.Logger
}

// log returns the request logger carried by ctx, or the service logger.
func (o *Options) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return o.Logger
}

func (o *Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
