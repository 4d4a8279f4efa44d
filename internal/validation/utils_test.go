package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (p *loginPayload) Validate() error {
	return Struct(p)
}

func newContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantFields []string
	}{
		{name: "valid", body: `{"email":"jane@example.com","password":"pass1234"}`},
		{name: "missing both", body: `{}`, wantErr: true, wantFields: []string{"email", "password"}},
		{name: "bad email and short password", body: `{"email":"nope","password":"x"}`, wantErr: true, wantFields: []string{"email", "password"}},
		{name: "malformed json", body: `{"email":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BindAndValidate(newContext(tt.body), &loginPayload{})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			httpErr, ok := err.(*errs.HTTPError)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, httpErr.Status)

			var fields []string
			for _, fe := range httpErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestMessageAggregatesFields(t *testing.T) {
	err := Struct(&loginPayload{Email: "nope"})
	require.Error(t, err)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, InvalidInputPrefix))
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "password is required")
}

func TestMerge(t *testing.T) {
	a := CustomValidationErrors{{Field: "price", Message: "must be an integer"}}
	b := CustomValidationErrors{{Field: "priceDiscount", Message: "must be below price"}}

	merged := Merge(nil, a, b)
	require.Error(t, merged)
	assert.Len(t, merged.(CustomValidationErrors), 2)

	assert.NoError(t, Merge(nil, nil))
}

func TestMessageKeepsSentences(t *testing.T) {
	msg := Message(CustomValidationErrors{
		{Field: "name", Message: "is required"},
		{Field: "passwordConfirm", Message: "Passwords don't match"},
	})
	assert.Equal(t, "Invalid input data. name is required, Passwords don't match", msg)
}
