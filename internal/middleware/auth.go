package middleware

import (
	"context"
	"strings"

	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	MsgLoginRequired = "Please login to gain access."
	MsgForbidden     = "You are not authorized to perform this action."
)

// TokenAuthenticator resolves the user behind an access token.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type AuthMiddleware struct {
	server *server.Server
	tokens TokenAuthenticator
}

func NewAuthMiddleware(s *server.Server, tokens TokenAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		tokens: tokens,
	}
}

// Protect requires a valid bearer token whose user still exists and has
// not changed the password since the token was issued. The user is stored
// under UserKey.
func (auth *AuthMiddleware) Protect(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if token == "" {
			return errs.NewUnauthorizedError(MsgLoginRequired, true)
		}

		user, err := auth.tokens.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID.Hex())
		c.Set(UserRoleKey, user.Role.String())
		withUser(c, user)

		GetLogger(c).Debug().Msg("user authenticated")
		return next(c)
	}
}

// RestrictTo lets through only users holding one of roles. It must run
// after Protect.
func RestrictTo(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetUser(c)
			if user == nil {
				return errs.NewUnauthorizedError(MsgLoginRequired, true)
			}
			if !user.Role.In(roles...) {
				return errs.NewForbiddenError(MsgForbidden)
			}
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
