// Package repository owns every interaction with the document store.
//
// Services depend on the TourStore, UserStore and ReviewStore interfaces;
// the Mongo implementations live here and an in-memory implementation
// lives in repository/memory. Failures are returned as storeerr types so
// callers never see driver errors.
package repository

import (
	"context"
	"time"

	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TourStore persists tours. Listings and aggregates never include secret
// tours; FindByID does.
type TourStore interface {
	Create(ctx context.Context, tour *model.Tour) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Tour, error)
	Find(ctx context.Context, q query.Query) ([]model.Tour, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Tour, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetRatings(ctx context.Context, id primitive.ObjectID, quantity int, average float64) error
	Metrics(ctx context.Context, minRating float64) ([]model.TourMetric, error)
	MonthlyStats(ctx context.Context, year int) ([]model.MonthlyStat, error)
}

// UserStore persists users. Every lookup ignores inactive users.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*model.User, error)
	FindSummaries(ctx context.Context, ids []primitive.ObjectID) ([]model.UserSummary, error)
	Find(ctx context.Context, q query.Query) ([]model.User, error)
	// Update applies set and removes the unset fields.
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) (*model.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ReviewStore persists reviews. A (tour, user) pair is unique.
type ReviewStore interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Review, error)
	// Find lists reviews with their author populated.
	Find(ctx context.Context, q query.Query) ([]model.ReviewView, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	RatingStats(ctx context.Context, tourID primitive.ObjectID) (model.RatingStats, error)
}

// VisibleTours restricts filter to non-secret tours.
func VisibleTours(filter bson.M) bson.M {
	return and(filter, bson.M{"secretTour": bson.M{"$ne": true}})
}

// ActiveUsers restricts filter to users that did not delete their account.
func ActiveUsers(filter bson.M) bson.M {
	return and(filter, bson.M{"active": bson.M{"$ne": false}})
}

func and(filter, cond bson.M) bson.M {
	if len(filter) == 0 {
		return cond
	}
	return bson.M{"$and": bson.A{filter, cond}}
}

// YearRange is [Jan 1 of year, Jan 1 of year+1) in UTC.
func YearRange(year int) (from, to time.Time) {
	from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}
