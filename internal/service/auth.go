package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/tours-api/internal/auth"
	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/lib/email"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/repository"
	"github.com/deppfellow/tours-api/internal/storeerr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Messages returned by the authentication flows.
const (
	MsgInvalidUser        = "Invalid user. Please create an account."
	MsgPasswordChanged    = "Password changed since last login."
	MsgInvalidCredentials = "Invalid Email or Password"
	MsgWrongPassword      = "Your current password is wrong."
	MsgUnknownEmail       = "User with this email does not exist."
	MsgEmailFailed        = "Error! Something went wrong when sending email."
	MsgInvalidResetToken  = "Invalid or expired token."
)

// resetFields are cleared once a reset token is used or abandoned.
var resetFields = []string{"passwordResetToken", "passwordResetExpires"}

type AuthService struct {
	users repository.UserStore
	opts  *Options
}

func NewAuthService(repos *repository.Repositories, opts *Options) *AuthService {
	return &AuthService{users: repos.Users, opts: opts}
}

// IssueToken signs an access token for user.
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	if user == nil || user.ID.IsZero() {
		return "", auth.ErrInvalidUserID
	}
	return s.opts.Tokens.Issue(user.ID.Hex())
}

// Signup creates a user-role account; any requested role is ignored.
func (s *AuthService) Signup(ctx context.Context, name, emailAddr, password string) (*model.User, string, error) {
	hash, err := s.opts.Hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:     name,
		Email:    emailAddr,
		Password: hash,
		Role:     model.RoleUser,
	}
	user.ApplyDefaults(s.opts.now())
	if err := user.Validate(); err != nil {
		return nil, "", err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	if s.opts.Welcome != nil {
		if err := s.opts.Welcome.EnqueueWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			s.opts.log(ctx).Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to schedule welcome email")
		}
	}
	return user, token, nil
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*model.User, string, error) {
	invalid := errs.NewUnauthorizedError(MsgInvalidCredentials, false)

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if errors.Is(err, storeerr.ErrNotFound) {
		return nil, "", invalid
	}
	if err != nil {
		return nil, "", err
	}

	ok, err := s.opts.Hasher.Compare(user.Password, password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", invalid
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves the user behind an access token. Token failures
// are returned as jwt errors; a deleted user or a password changed after
// the token was issued is a 401.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.opts.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil, errs.NewUnauthorizedError(MsgInvalidUser, true)
	}

	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, storeerr.ErrNotFound) {
		return nil, errs.NewUnauthorizedError(MsgInvalidUser, true)
	}
	if err != nil {
		return nil, err
	}

	if user.ChangedPasswordAfter(claims.IssuedAtUnix()) {
		return nil, errs.NewUnauthorizedError(MsgPasswordChanged, true)
	}
	return user, nil
}

// ForgotPassword stores a reset token for the account and emails it.
// resetURL turns the plain token into the link sent to the user.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string, resetURL func(token string) string) error {
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if errors.Is(err, storeerr.ErrNotFound) {
		return errs.NewNotFoundError(MsgUnknownEmail, nil)
	}
	if err != nil {
		return err
	}

	plain, digest, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	expires := s.opts.now().Add(s.opts.ResetTTL)
	if _, err := s.users.Update(ctx, user.ID, bson.M{
		"passwordResetToken":   digest,
		"passwordResetExpires": expires,
	}); err != nil {
		return err
	}

	msg, err := email.PasswordResetMessage(user.Email, user.Name, resetURL(plain), humanDuration(s.opts.ResetTTL))
	if err == nil {
		err = s.opts.Mailer.Send(ctx, msg)
	}
	if err != nil {
		s.opts.log(ctx).Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to send password reset email")
		if _, rollbackErr := s.users.Update(ctx, user.ID, nil, resetFields...); rollbackErr != nil {
			s.opts.log(ctx).Error().Err(rollbackErr).Msg("failed to clear password reset token")
		}
		return errs.NewInternalServerErrorWithMessage(MsgEmailFailed)
	}
	return nil
}

// ResetPassword consumes a valid reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (*model.User, string, error) {
	user, err := s.users.FindByResetToken(ctx, auth.HashResetToken(token), s.opts.now())
	if errors.Is(err, storeerr.ErrNotFound) {
		return nil, "", errs.NewBadRequestError(MsgInvalidResetToken, nil, nil, nil)
	}
	if err != nil {
		return nil, "", err
	}
	return s.setPassword(ctx, user, password, resetFields...)
}

// UpdatePassword changes the password of a signed-in user after checking
// the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, user *model.User, current, password string) (*model.User, string, error) {
	ok, err := s.opts.Hasher.Compare(user.Password, current)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", errs.NewUnauthorizedError(MsgWrongPassword, false)
	}
	return s.setPassword(ctx, user, password)
}

// setPassword stores a new hash and backdates passwordChangedAt by one
// second so a token issued right after still verifies.
func (s *AuthService) setPassword(ctx context.Context, user *model.User, password string, unset ...string) (*model.User, string, error) {
	hash, err := s.opts.Hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	updated, err := s.users.Update(ctx, user.ID, bson.M{
		"password":          hash,
		"passwordChangedAt": s.opts.now().Add(-time.Second),
	}, unset...)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(updated)
	if err != nil {
		return nil, "", err
	}
	return updated, token, nil
}

func humanDuration(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
	return d.String()
}
