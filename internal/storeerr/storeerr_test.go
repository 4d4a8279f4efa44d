package storeerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestFromMongo(t *testing.T) {
	assert.NoError(t, FromMongo("tours", nil))

	err := FromMongo("tours", mongo.ErrNoDocuments)
	assert.ErrorIs(t, err, ErrNotFound)

	dupErr := mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: tours.tours index: name_1 dup key: { name: "The Forest Hiker" }`,
	}}}
	var dup *DuplicateError
	require.ErrorAs(t, FromMongo("tours", dupErr), &dup)
	assert.Equal(t, "name", dup.Field)
	assert.Equal(t, "The Forest Hiker", dup.Value)

	other := errors.New("connection reset")
	assert.ErrorIs(t, FromMongo("tours", other), other)
}

func TestParseDuplicateCompoundIndex(t *testing.T) {
	dup := parseDuplicate("reviews",
		`E11000 duplicate key error collection: tours.reviews index: tour_1_user_1 dup key: { tour: ObjectId('5c88fa8cf4afda39709c2955'), user: ObjectId('5c8a1d5b0190b214360dc057') }`)
	assert.Equal(t, "tour_user", dup.Field)
	assert.Equal(t, "5c88fa8cf4afda39709c2955", dup.Value)
}

func TestParseID(t *testing.T) {
	_, err := ParseID("5c88fa8cf4afda39709c2955")
	assert.NoError(t, err)

	_, err = ParseID("nope")
	var invalid *InvalidIDError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "nope", invalid.Value)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantOK     bool
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found",
			err:        fmt.Errorf("get: %w", &NotFoundError{Collection: "tours"}),
			wantOK:     true,
			wantStatus: http.StatusNotFound,
			wantCode:   "TOUR_NOT_FOUND",
			wantMsg:    MessageNotFound,
		},
		{
			name:       "duplicate",
			err:        &DuplicateError{Collection: "users", Field: "email", Value: "a@b.io"},
			wantOK:     true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "USER_ALREADY_EXISTS",
			wantMsg:    `Duplicate field value: "a@b.io". Please use another value.`,
		},
		{
			name:       "invalid id",
			err:        &InvalidIDError{Value: "123"},
			wantOK:     true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ID",
			wantMsg:    "Invalid id: 123",
		},
		{
			name:       "operational passes through",
			err:        errs.NewForbiddenError("nope"),
			wantOK:     true,
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
			wantMsg:    "nope",
		},
		{name: "unknown", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HandleError(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestHumanizeText(t *testing.T) {
	assert.Equal(t, "Tour User", humanizeText("tour_user"))
	assert.Equal(t, "Email", humanizeText("email"))
}
