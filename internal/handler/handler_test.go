package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/deppfellow/tours-api/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestProject(t *testing.T) {
	tours := []model.Tour{{Name: "The Forest Hiker", Duration: 14, Price: 397, Summary: "Breathtaking hike"}}

	tests := []struct {
		name       string
		projection bson.M
		want       []string
		dropped    []string
	}{
		{
			name:       "default keeps everything",
			projection: bson.M{"__v": 0},
			want:       []string{"name", "summary", "durationWeeks"},
		},
		{
			name:       "inclusion keeps id and virtuals of included fields",
			projection: bson.M{"name": 1, "duration": 1},
			want:       []string{"id", "name", "duration", "durationWeeks"},
			dropped:    []string{"summary", "price"},
		},
		{
			name:       "exclusion drops virtuals of excluded fields",
			projection: bson.M{"duration": 0},
			want:       []string{"name", "summary"},
			dropped:    []string{"duration", "durationWeeks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := project(tours, tt.projection, tourVirtuals)
			require.NoError(t, err)

			if docs, ok := out.([]map[string]any); ok {
				for _, key := range tt.want {
					assert.Contains(t, docs[0], key)
				}
				for _, key := range tt.dropped {
					assert.NotContains(t, docs[0], key)
				}
				return
			}
			assert.Empty(t, tt.dropped)
			assert.Equal(t, tours, out)
		})
	}
}

func TestAliasTopTours(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/tours/top-5-cheap?limit=50&difficulty=easy", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	var got url.Values
	err := AliasTopTours()(func(c echo.Context) error {
		got = listValues(c)
		return nil
	})(c)
	require.NoError(t, err)

	assert.Equal(t, "5", got.Get("limit"))
	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "-ratingsAverage,price", got.Get("sort"))
	assert.Equal(t, "easy", got.Get("difficulty"))
	assert.Equal(t, "50", c.QueryParam("limit"))
}

func TestListValuesFallsBackToQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/tours?page=2&limit=3", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "2", listValues(c).Get("page"))
}

func TestNewRequestReturnsFreshValue(t *testing.T) {
	proto := &UpdateTourRequest{ByIDRequest: ByIDRequest{ID: "abc"}}

	req := newRequest(proto)
	require.NotSame(t, proto, req)
	assert.Empty(t, req.ID)
	assert.Equal(t, "abc", proto.ID)
}

func TestUpdateProfileRejectsPasswords(t *testing.T) {
	password := "pass1234"
	err := (&UpdateProfileRequest{Password: &password}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot update password field with this route.")
}

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec(context.Background(), filepath.Join("..", "..", StaticDir, "openapi.json"))
	require.NoError(t, err)

	assert.Equal(t, "Tours API", doc.Info.Title)
	for _, path := range []string{"/tours", "/tours/{id}", "/users/signup", "/reviews/{id}", "/tours/{tourId}/reviews"} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}
