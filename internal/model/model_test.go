package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/deppfellow/tours-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var now = time.Date(2021, time.March, 4, 10, 0, 0, 0, time.UTC)

func validTour() *Tour {
	in := TourInput{
		Name:         "  The Forest Hiker ",
		Duration:     14,
		MaxGroupSize: 10,
		Price:        497,
		Summary:      "Breathtaking hike",
		Description:  "A long walk.",
		ImageCover:   "tour-1-cover.jpg",
	}
	return in.Tour(now)
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verrs validation.CustomValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestTourInputAppliesDefaults(t *testing.T) {
	tour := validTour()

	assert.Equal(t, "The Forest Hiker", tour.Name)
	assert.Equal(t, "the-forest-hiker", tour.Slug)
	assert.Equal(t, DefaultDifficulty, tour.Difficulty)
	assert.Equal(t, DefaultRatingsAverage, tour.RatingsAverage)
	assert.Equal(t, now, tour.CreatedAt)
	assert.Equal(t, []time.Time{now}, tour.StartDates)
	assert.NoError(t, tour.Validate())
}

func TestTourValidate(t *testing.T) {
	discount := func(v float64) *float64 { return &v }

	tests := []struct {
		name       string
		mutate     func(t *Tour)
		wantFields []string
	}{
		{name: "missing name", mutate: func(t *Tour) { t.Name = "" }, wantFields: []string{"name"}},
		{name: "fractional price", mutate: func(t *Tour) { t.Price = 99.5 }, wantFields: []string{"price"}},
		{name: "discount above price", mutate: func(t *Tour) { t.PriceDiscount = discount(600) }, wantFields: []string{"priceDiscount"}},
		{name: "discount equal to price", mutate: func(t *Tour) { t.PriceDiscount = discount(497) }, wantFields: []string{"priceDiscount"}},
		{name: "unknown difficulty", mutate: func(t *Tour) { t.Difficulty = "extreme" }, wantFields: []string{"difficulty"}},
		{name: "rating above five", mutate: func(t *Tour) { t.RatingsAverage = 5.5 }, wantFields: []string{"ratingsAverage"}},
		{
			name:       "several failures",
			mutate:     func(t *Tour) { t.Summary = ""; t.Price = 10.25 },
			wantFields: []string{"summary", "price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour := validTour()
			tt.mutate(tour)
			assert.ElementsMatch(t, tt.wantFields, fieldsOf(t, tour.Validate()))
		})
	}
}

func TestTourJSONIncludesDurationWeeks(t *testing.T) {
	tour := validTour()

	raw, err := json.Marshal(tour)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 2.0, out["durationWeeks"])
	assert.Equal(t, "The Forest Hiker", out["name"])
	assert.NotContains(t, out, "__v")
}

func TestTourPatch(t *testing.T) {
	tour := validTour()
	name := "The Sea Explorer"
	price := 397.0
	patch := TourPatch{Name: &name, Price: &price}

	patch.Apply(tour)
	set := patch.Set(tour)

	assert.Equal(t, "the-sea-explorer", tour.Slug)
	assert.Equal(t, map[string]any{
		"name":  "The Sea Explorer",
		"slug":  "the-sea-explorer",
		"price": 397.0,
	}, map[string]any(set))
}

func TestRoleParseAndIn(t *testing.T) {
	r, err := ParseRole("LEAD_GUIDE")
	require.NoError(t, err)
	assert.Equal(t, RoleLeadGuide, r)

	_, err = ParseRole("owner")
	assert.Error(t, err)

	assert.True(t, RoleAdmin.In(RoleAdmin, RoleLeadGuide))
	assert.False(t, RoleGuide.In(RoleAdmin, RoleLeadGuide))
	assert.False(t, Role("").Valid())
}

func TestUserChangedPasswordAfter(t *testing.T) {
	u := &User{}
	assert.False(t, u.ChangedPasswordAfter(now.Unix()))

	changed := now.Add(-time.Second)
	u.PasswordChangedAt = &changed
	assert.False(t, u.ChangedPasswordAfter(now.Unix()))
	assert.True(t, u.ChangedPasswordAfter(now.Add(-time.Hour).Unix()))
}

func TestUserDefaultsAndValidate(t *testing.T) {
	u := &User{Name: " Jonas ", Email: " Jonas@Example.COM ", Password: "hash"}
	u.ApplyDefaults(now)

	assert.Equal(t, "jonas@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, DefaultPhoto, u.Photo)
	assert.True(t, u.Active)
	assert.NoError(t, u.Validate())

	u.Role = "owner"
	assert.Equal(t, []string{"role"}, fieldsOf(t, u.Validate()))
}

func TestReviewValidate(t *testing.T) {
	r := &Review{Review: "Great", Rating: 6, Tour: primitive.NewObjectID()}
	assert.ElementsMatch(t, []string{"rating", "user"}, fieldsOf(t, r.Validate()))
}

func TestRatingStatsRollup(t *testing.T) {
	q, avg := RatingStats{}.Rollup()
	assert.Equal(t, 0, q)
	assert.Equal(t, DefaultRatingsAverage, avg)

	q, avg = RatingStats{Quantity: 3, Average: 4.666666}.Rollup()
	assert.Equal(t, 3, q)
	assert.Equal(t, 4.67, avg)
}
