package model

import (
	"encoding/json"
	"math"
	"time"

	"github.com/deppfellow/tours-api/internal/validation"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tour defaults.
const (
	DefaultDifficulty     = "easy"
	DefaultRatingsAverage = 4.5
)

// Location is a GeoJSON point with optional itinerary metadata.
type Location struct {
	Type        string    `bson:"type" json:"type" validate:"omitempty,eq=Point"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates" validate:"omitempty,min=2,max=2"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty" validate:"gte=0"`
}

// Tour is a bookable tour.
type Tour struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name" validate:"required,min=10,max=40"`
	Slug            string               `bson:"slug" json:"slug"`
	Duration        float64              `bson:"duration" json:"duration" validate:"required,gt=0"`
	MaxGroupSize    int                  `bson:"maxGroupSize" json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty      string               `bson:"difficulty" json:"difficulty" validate:"oneof=easy medium difficult"`
	RatingsAverage  float64              `bson:"ratingsAverage" json:"ratingsAverage" validate:"gte=1,lte=5"`
	RatingsQuantity int                  `bson:"ratingsQuantity" json:"ratingsQuantity" validate:"gte=0"`
	Price           float64              `bson:"price" json:"price" validate:"required,gt=0"`
	PriceDiscount   *float64             `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty" validate:"omitempty,gte=0"`
	Summary         string               `bson:"summary" json:"summary" validate:"required"`
	Description     string               `bson:"description" json:"description" validate:"required"`
	ImageCover      string               `bson:"imageCover" json:"imageCover" validate:"required"`
	Images          []string             `bson:"images" json:"images"`
	SecretTour      bool                 `bson:"secretTour" json:"secretTour"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	StartDates      []time.Time          `bson:"startDates" json:"startDates"`
	StartLocation   *Location            `bson:"startLocation,omitempty" json:"startLocation,omitempty"`
	Locations       []Location           `bson:"locations" json:"locations" validate:"omitempty,dive"`
	Guides          []primitive.ObjectID `bson:"guides" json:"guides"`
	Version         int                  `bson:"__v" json:"-"`
}

// DurationWeeks is derived from Duration and never stored.
func (t *Tour) DurationWeeks() float64 {
	return t.Duration / 7
}

// MarshalJSON adds the durationWeeks virtual field.
func (t Tour) MarshalJSON() ([]byte, error) {
	type tour Tour
	return json.Marshal(struct {
		tour
		DurationWeeks float64 `json:"durationWeeks"`
	}{tour: tour(t), DurationWeeks: t.DurationWeeks()})
}

// Normalize trims text fields and recomputes the slug from the name.
func (t *Tour) Normalize() {
	trimAll(&t.Name, &t.Summary, &t.Description)
	t.Slug = slug.Make(t.Name)
}

// ApplyDefaults fills the fields the store would default on insert.
func (t *Tour) ApplyDefaults(now time.Time) {
	if t.Difficulty == "" {
		t.Difficulty = DefaultDifficulty
	}
	if t.RatingsAverage == 0 {
		t.RatingsAverage = DefaultRatingsAverage
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if len(t.StartDates) == 0 {
		t.StartDates = []time.Time{now}
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	if t.Locations == nil {
		t.Locations = []Location{}
	}
	if t.Guides == nil {
		t.Guides = []primitive.ObjectID{}
	}
	t.Normalize()
}

// Validate runs the tag rules plus the cross-field rules.
func (t *Tour) Validate() error {
	var rules validation.CustomValidationErrors

	if t.Price != math.Trunc(t.Price) {
		rules = append(rules, validation.CustomValidationError{Field: "price", Message: "must be an integer"})
	}
	if t.PriceDiscount != nil && *t.PriceDiscount >= t.Price {
		rules = append(rules, validation.CustomValidationError{Field: "priceDiscount", Message: "must be below the regular price"})
	}

	if len(rules) == 0 {
		return validation.Struct(t)
	}
	return validation.Merge(validation.Struct(t), rules)
}

// TourInput is the client-settable part of a tour used on create.
type TourInput struct {
	Name          string               `json:"name"`
	Duration      float64              `json:"duration"`
	MaxGroupSize  int                  `json:"maxGroupSize"`
	Difficulty    string               `json:"difficulty"`
	Price         float64              `json:"price"`
	PriceDiscount *float64             `json:"priceDiscount"`
	Summary       string               `json:"summary"`
	Description   string               `json:"description"`
	ImageCover    string               `json:"imageCover"`
	Images        []string             `json:"images"`
	SecretTour    bool                 `json:"secretTour"`
	StartDates    []time.Time          `json:"startDates"`
	StartLocation *Location            `json:"startLocation"`
	Locations     []Location           `json:"locations"`
	Guides        []primitive.ObjectID `json:"guides"`
}

// Tour builds a new, defaulted tour from the input.
func (in *TourInput) Tour(now time.Time) *Tour {
	t := &Tour{
		Name:          in.Name,
		Duration:      in.Duration,
		MaxGroupSize:  in.MaxGroupSize,
		Difficulty:    in.Difficulty,
		Price:         in.Price,
		PriceDiscount: in.PriceDiscount,
		Summary:       in.Summary,
		Description:   in.Description,
		ImageCover:    in.ImageCover,
		Images:        in.Images,
		SecretTour:    in.SecretTour,
		StartDates:    in.StartDates,
		StartLocation: in.StartLocation,
		Locations:     in.Locations,
		Guides:        in.Guides,
	}
	t.ApplyDefaults(now)
	return t
}

// TourPatch is a partial tour update; nil fields are left untouched.
type TourPatch struct {
	Name          *string               `json:"name"`
	Duration      *float64              `json:"duration"`
	MaxGroupSize  *int                  `json:"maxGroupSize"`
	Difficulty    *string               `json:"difficulty"`
	Price         *float64              `json:"price"`
	PriceDiscount *float64              `json:"priceDiscount"`
	Summary       *string               `json:"summary"`
	Description   *string               `json:"description"`
	ImageCover    *string               `json:"imageCover"`
	Images        *[]string             `json:"images"`
	SecretTour    *bool                 `json:"secretTour"`
	StartDates    *[]time.Time          `json:"startDates"`
	StartLocation *Location             `json:"startLocation"`
	Locations     *[]Location           `json:"locations"`
	Guides        *[]primitive.ObjectID `json:"guides"`
}

// Apply writes the patch onto t and renormalizes it.
func (p *TourPatch) Apply(t *Tour) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.MaxGroupSize != nil {
		t.MaxGroupSize = *p.MaxGroupSize
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.PriceDiscount != nil {
		t.PriceDiscount = p.PriceDiscount
	}
	if p.Summary != nil {
		t.Summary = *p.Summary
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ImageCover != nil {
		t.ImageCover = *p.ImageCover
	}
	if p.Images != nil {
		t.Images = *p.Images
	}
	if p.SecretTour != nil {
		t.SecretTour = *p.SecretTour
	}
	if p.StartDates != nil {
		t.StartDates = *p.StartDates
	}
	if p.StartLocation != nil {
		t.StartLocation = p.StartLocation
	}
	if p.Locations != nil {
		t.Locations = *p.Locations
	}
	if p.Guides != nil {
		t.Guides = *p.Guides
	}
	t.Normalize()
}

// Set returns the $set document for the patched fields, read back from
// the already patched tour t so normalized values are stored.
func (p *TourPatch) Set(t *Tour) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = t.Name
		set["slug"] = t.Slug
	}
	if p.Duration != nil {
		set["duration"] = t.Duration
	}
	if p.MaxGroupSize != nil {
		set["maxGroupSize"] = t.MaxGroupSize
	}
	if p.Difficulty != nil {
		set["difficulty"] = t.Difficulty
	}
	if p.Price != nil {
		set["price"] = t.Price
	}
	if p.PriceDiscount != nil {
		set["priceDiscount"] = t.PriceDiscount
	}
	if p.Summary != nil {
		set["summary"] = t.Summary
	}
	if p.Description != nil {
		set["description"] = t.Description
	}
	if p.ImageCover != nil {
		set["imageCover"] = t.ImageCover
	}
	if p.Images != nil {
		set["images"] = t.Images
	}
	if p.SecretTour != nil {
		set["secretTour"] = t.SecretTour
	}
	if p.StartDates != nil {
		set["startDates"] = t.StartDates
	}
	if p.StartLocation != nil {
		set["startLocation"] = t.StartLocation
	}
	if p.Locations != nil {
		set["locations"] = t.Locations
	}
	if p.Guides != nil {
		set["guides"] = t.Guides
	}
	return set
}

// RoundRating rounds an average rating to two decimals.
func RoundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}
