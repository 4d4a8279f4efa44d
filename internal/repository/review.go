package repository

import (
	"context"

	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReviewRepository struct {
	coll  *mongo.Collection
	users string
}

// NewReviewRepository needs the users collection name to populate authors.
func NewReviewRepository(coll *mongo.Collection, usersCollection string) *ReviewRepository {
	return &ReviewRepository{coll: coll, users: usersCollection}
}

func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	id, err := insert(ctx, r.coll, review)
	if err != nil {
		return err
	}
	review.ID = id
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Review, error) {
	return findOne[model.Review](ctx, r.coll, bson.M{"_id": id})
}

// Find pages through reviews and joins each author's name and photo.
func (r *ReviewRepository) Find(ctx context.Context, q query.Query) ([]model.ReviewView, error) {
	filter := q.Filter
	if filter == nil {
		filter = bson.M{}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
	}
	if len(q.Sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: q.Sort}})
	}
	if q.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: q.Skip}})
	}
	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.Limit}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         r.users,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "user",
			"pipeline":     bson.A{bson.M{"$project": bson.M{"name": 1, "photo": 1}}},
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
	)
	return aggregate[model.ReviewView](ctx, r.coll, pipeline)
}

func (r *ReviewRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Review, error) {
	return updateOne[model.Review](ctx, r.coll, bson.M{"_id": id}, set)
}

func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.coll, bson.M{"_id": id})
}

// RatingStats counts and averages the ratings of one tour.
func (r *ReviewRepository) RatingStats(ctx context.Context, tourID primitive.ObjectID) (model.RatingStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$tour",
			"nRating":   bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}}},
	}
	stats, err := aggregate[model.RatingStats](ctx, r.coll, pipeline)
	if err != nil || len(stats) == 0 {
		return model.RatingStats{}, err
	}
	return stats[0], nil
}
