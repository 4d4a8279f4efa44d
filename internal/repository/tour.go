package repository

import (
	"context"

	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TourRepository struct {
	coll *mongo.Collection
}

func NewTourRepository(coll *mongo.Collection) *TourRepository {
	return &TourRepository{coll: coll}
}

func (r *TourRepository) Create(ctx context.Context, tour *model.Tour) error {
	id, err := insert(ctx, r.coll, tour)
	if err != nil {
		return err
	}
	tour.ID = id
	return nil
}

func (r *TourRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Tour, error) {
	return findOne[model.Tour](ctx, r.coll, bson.M{"_id": id})
}

func (r *TourRepository) Find(ctx context.Context, q query.Query) ([]model.Tour, error) {
	return findAll[model.Tour](ctx, r.coll, VisibleTours(q.Filter), findOptions(q))
}

func (r *TourRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Tour, error) {
	return updateOne[model.Tour](ctx, r.coll, bson.M{"_id": id}, set)
}

func (r *TourRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.coll, bson.M{"_id": id})
}

// SetRatings stores the review rollup without touching the version.
func (r *TourRepository) SetRatings(ctx context.Context, id primitive.ObjectID, quantity int, average float64) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"ratingsQuantity": quantity,
		"ratingsAverage":  average,
	}})
	return fromMongo(r.coll, err)
}

// Metrics groups well rated tours by difficulty.
func (r *TourRepository) Metrics(ctx context.Context, minRating float64) ([]model.TourMetric, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: VisibleTours(bson.M{"ratingsAverage": bson.M{"$gte": minRating}})}},
		{{Key: "$group", Value: bson.M{
			"_id":             bson.M{"$toUpper": "$difficulty"},
			"toursCount":      bson.M{"$sum": 1},
			"ratingsCount":    bson.M{"$sum": "$ratingsQuantity"},
			"averageRating":   bson.M{"$avg": "$ratingsAverage"},
			"averagePrice":    bson.M{"$avg": "$price"},
			"minPrice":        bson.M{"$min": "$price"},
			"maxPrice":        bson.M{"$max": "$price"},
			"averageDuration": bson.M{"$avg": "$duration"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "averageRating", Value: 1}}}},
	}
	return aggregate[model.TourMetric](ctx, r.coll, pipeline)
}

// MonthlyStats counts start dates per month of year, busiest month first.
func (r *TourRepository) MonthlyStats(ctx context.Context, year int) ([]model.MonthlyStat, error) {
	from, to := YearRange(year)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: VisibleTours(nil)}},
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":        bson.M{"$month": "$startDates"},
			"toursCount": bson.M{"$sum": 1},
			"tours": bson.M{"$push": bson.M{
				"_id":      "$_id",
				"name":     "$name",
				"duration": "$duration",
			}},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "toursCount", Value: -1}, {Key: "month", Value: 1}}}},
	}
	return aggregate[model.MonthlyStat](ctx, r.coll, pipeline)
}
