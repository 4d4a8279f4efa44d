package handler

import (
	"fmt"

	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/service"
	"github.com/labstack/echo/v4"
)

const (
	MsgSignup          = "Signup successful"
	MsgLogin           = "Successfully logged in"
	MsgResetTokenSent  = "Password reset token sent to email."
	MsgResetSuccessful = "Password reset successful."
	MsgPasswordUpdated = "Password updated successfully."
)

// AuthHandler serves account creation, login and password management.
type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(h Handler, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Handler: h, auth: auth}
}

func authenticated(c echo.Context, message string, user *model.User, token string) *Response {
	return success(c, message, Data{"user": user, "token": token})
}

func (h *AuthHandler) Signup(c echo.Context, req *SignupRequest) (*Response, error) {
	user, token, err := h.auth.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return authenticated(c, MsgSignup, user, token), nil
}

func (h *AuthHandler) Login(c echo.Context, req *LoginRequest) (*Response, error) {
	user, token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return authenticated(c, MsgLogin, user, token), nil
}

// ForgotPassword emails a reset link pointing back at this server.
func (h *AuthHandler) ForgotPassword(c echo.Context, req *ForgotPasswordRequest) (*Response, error) {
	base := fmt.Sprintf("%s://%s/api/v1/users/reset-password/", c.Scheme(), c.Request().Host)
	err := h.auth.ForgotPassword(c.Request().Context(), req.Email, func(token string) string {
		return base + token
	})
	if err != nil {
		return nil, err
	}
	return success(c, MsgResetTokenSent, nil), nil
}

func (h *AuthHandler) ResetPassword(c echo.Context, req *ResetPasswordRequest) (*Response, error) {
	user, token, err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.Password)
	if err != nil {
		return nil, err
	}
	return authenticated(c, MsgResetSuccessful, user, token), nil
}

func (h *AuthHandler) UpdatePassword(c echo.Context, req *UpdatePasswordRequest) (*Response, error) {
	user, token, err := h.auth.UpdatePassword(c.Request().Context(), currentUser(c), req.PasswordCurrent, req.Password)
	if err != nil {
		return nil, err
	}
	return authenticated(c, MsgPasswordUpdated, user, token), nil
}
