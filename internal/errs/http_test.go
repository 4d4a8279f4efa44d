package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	custom := "TOUR_ALREADY_EXISTS"

	tests := []struct {
		name   string
		err    *HTTPError
		status int
		code   string
	}{
		{"unauthorized", NewUnauthorizedError("Please login to gain access.", false), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", NewForbiddenError("nope"), http.StatusForbidden, "FORBIDDEN"},
		{"bad request", NewBadRequestError("bad", nil, nil, nil), http.StatusBadRequest, "BAD_REQUEST"},
		{"bad request custom code", NewBadRequestError("dup", &custom, nil, nil), http.StatusBadRequest, custom},
		{"not found", NewNotFoundError("missing", nil), http.StatusNotFound, "NOT_FOUND"},
		{"too many", NewTooManyRequestsError("slow down"), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"internal", NewInternalServerError(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestUnauthorizedLoginAction(t *testing.T) {
	err := NewUnauthorizedError("Password changed since last login.", true)
	require.NotNil(t, err.Action)
	assert.Equal(t, ActionTypeRedirect, err.Action.Type)
	assert.Equal(t, "/api/v1/users/login", err.Action.Value)
}

func TestHTTPErrorMatchesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading tour: %w", NewNotFoundError("No document found with this id", nil))

	var httpErr *HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.True(t, errors.Is(wrapped, &HTTPError{}))
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "fail", StatusText(http.StatusBadRequest))
	assert.Equal(t, "fail", StatusText(http.StatusNotFound))
	assert.Equal(t, "error", StatusText(http.StatusInternalServerError))
	assert.Equal(t, "error", StatusText(http.StatusServiceUnavailable))
}

func TestWithMessageCopies(t *testing.T) {
	base := NewNotFoundError("base", nil)
	copied := base.WithMessage("changed")

	assert.Equal(t, "base", base.Message)
	assert.Equal(t, "changed", copied.Message)
	assert.Equal(t, base.Status, copied.Status)
}
