package memory

import (
	"context"

	"github.com/deppfellow/tours-api/internal/database"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewStore struct {
	reviews *collection[model.Review]
	users   *UserStore
}

func NewReviewStore(users *UserStore) *ReviewStore {
	return &ReviewStore{
		reviews: newCollection[model.Review](database.ReviewsCollection, []string{"tour", "user"}),
		users:   users,
	}
}

func (s *ReviewStore) Create(_ context.Context, review *model.Review) error {
	id, err := s.reviews.insert(review)
	if err != nil {
		return err
	}
	review.ID = id
	return nil
}

func (s *ReviewStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.Review, error) {
	return s.reviews.findOne(bson.M{"_id": id})
}

func (s *ReviewStore) Find(_ context.Context, q query.Query) ([]model.ReviewView, error) {
	q.Projection = nil
	reviews, err := s.reviews.findAll(q.Filter, q)
	if err != nil {
		return nil, err
	}
	out := make([]model.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, model.ReviewView{
			ID:        r.ID,
			Review:    r.Review,
			Rating:    r.Rating,
			CreatedAt: r.CreatedAt,
			Tour:      r.Tour,
			User:      s.users.author(r.User),
		})
	}
	return out, nil
}

func (s *ReviewStore) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*model.Review, error) {
	return s.reviews.update(bson.M{"_id": id}, set, nil, true)
}

func (s *ReviewStore) Delete(_ context.Context, id primitive.ObjectID) error {
	return s.reviews.delete(bson.M{"_id": id})
}

func (s *ReviewStore) RatingStats(_ context.Context, tourID primitive.ObjectID) (model.RatingStats, error) {
	reviews, err := s.reviews.findAll(bson.M{"tour": tourID}, query.Query{})
	if err != nil {
		return model.RatingStats{}, err
	}
	var stats model.RatingStats
	for _, r := range reviews {
		stats.Quantity++
		stats.Average += r.Rating
	}
	if stats.Quantity > 0 {
		stats.Average /= float64(stats.Quantity)
	}
	return stats, nil
}
