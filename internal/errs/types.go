package errs

import (
	"net/http"
)

func codeFor(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// New creates an HTTPError for an arbitrary status.
func New(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    codeFor(status),
		Message: message,
		Status:  status,
	}
}

// NewUnauthorizedError creates a 401 Unauthorized HTTPError. When login
// is true the client is pointed at the login route.
func NewUnauthorizedError(message string, login bool) *HTTPError {
	err := New(http.StatusUnauthorized, message)
	if login {
		err.Action = &Action{
			Type:    ActionTypeRedirect,
			Message: "Please login again",
			Value:   "/api/v1/users/login",
		}
	}
	return err
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError(message string) *HTTPError {
	return New(http.StatusForbidden, message)
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code overrides the default "BAD_REQUEST" code when non-nil; errors and
// action are optional.
func NewBadRequestError(message string, code *string, errors []FieldError, action *Action) *HTTPError {
	err := New(http.StatusBadRequest, message)
	if code != nil {
		err.Code = *code
	}
	err.Errors = errors
	err.Action = action
	return err
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, code *string) *HTTPError {
	err := New(http.StatusNotFound, message)
	if code != nil {
		err.Code = *code
	}
	return err
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError(message string) *HTTPError {
	return New(http.StatusTooManyRequests, message)
}

// NewInternalServerError creates a 500 with the generic client message.
func NewInternalServerError() *HTTPError {
	return New(http.StatusInternalServerError, MessageSomethingWentWrong)
}

// NewInternalServerErrorWithMessage creates an operational 500 whose
// message is safe to show to clients.
func NewInternalServerErrorWithMessage(message string) *HTTPError {
	return New(http.StatusInternalServerError, message)
}

// MessageSomethingWentWrong is shown for masked, non-operational errors.
const MessageSomethingWentWrong = "Something went wrong."
