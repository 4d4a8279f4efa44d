package model

import (
	"time"

	"github.com/deppfellow/tours-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a user's rating of a tour. A user reviews a tour at most once.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Review    string             `bson:"review" json:"review" validate:"required"`
	Rating    float64            `bson:"rating" json:"rating" validate:"required,gte=1,lte=5"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour" validate:"required"`
	User      primitive.ObjectID `bson:"user" json:"user" validate:"required"`
	Version   int                `bson:"__v" json:"-"`
}

func (r *Review) Normalize() {
	trimAll(&r.Review)
}

func (r *Review) Validate() error {
	return validation.Struct(r)
}

// ReviewView is a review with its author populated.
type ReviewView struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Review    string             `bson:"review" json:"review"`
	Rating    float64            `bson:"rating" json:"rating"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour"`
	User      *UserSummary       `bson:"user" json:"user"`
}

// ReviewPatch updates the text or the rating of a review.
type ReviewPatch struct {
	Review *string  `json:"review"`
	Rating *float64 `json:"rating"`
}

func (p *ReviewPatch) Apply(r *Review) {
	if p.Review != nil {
		r.Review = *p.Review
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	r.Normalize()
}

func (p *ReviewPatch) Set(r *Review) map[string]any {
	set := map[string]any{}
	if p.Review != nil {
		set["review"] = r.Review
	}
	if p.Rating != nil {
		set["rating"] = r.Rating
	}
	return set
}
