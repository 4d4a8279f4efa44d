package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/query"
	"github.com/deppfellow/tours-api/internal/repository"
	"github.com/deppfellow/tours-api/internal/storeerr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MsgNotReviewAuthor is returned when a user edits someone else's review.
const MsgNotReviewAuthor = "You can only change your own reviews."

// ReviewInput is the client-settable part of a new review.
type ReviewInput struct {
	Review string
	Rating float64
}

type ReviewService struct {
	reviews repository.ReviewStore
	tours   repository.TourStore
	opts    *Options
}

func NewReviewService(repos *repository.Repositories, opts *Options) *ReviewService {
	return &ReviewService{reviews: repos.Reviews, tours: repos.Tours, opts: opts}
}

// List returns reviews, restricted to one tour when tourID is set.
func (s *ReviewService) List(ctx context.Context, tourID *primitive.ObjectID, values url.Values) ([]model.ReviewView, int64, error) {
	features := query.New(values)
	q, err := features.Build()
	if err != nil {
		return nil, 0, err
	}
	if tourID != nil {
		q.Filter["tour"] = *tourID
	}

	reviews, err := s.reviews.Find(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return reviews, features.Page(), nil
}

func (s *ReviewService) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Review, error) {
	return s.reviews.FindByID(ctx, id)
}

// Create posts user's review of a tour and refreshes the tour's ratings.
func (s *ReviewService) Create(ctx context.Context, user *model.User, tourID primitive.ObjectID, input ReviewInput) (*model.Review, error) {
	if _, err := s.tours.FindByID(ctx, tourID); err != nil {
		return nil, err
	}

	review := &model.Review{
		Review:    input.Review,
		Rating:    input.Rating,
		CreatedAt: s.opts.now(),
		Tour:      tourID,
		User:      user.ID,
	}
	review.Normalize()
	if err := review.Validate(); err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.rollup(ctx, tourID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) UpdateByID(ctx context.Context, id primitive.ObjectID, patch *model.ReviewPatch) (*model.Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(review)
	if err := review.Validate(); err != nil {
		return nil, err
	}

	set := patch.Set(review)
	if len(set) == 0 {
		return review, nil
	}
	updated, err := s.reviews.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}

	if err := s.rollup(ctx, updated.Tour); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ReviewService) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	return s.rollup(ctx, review.Tour)
}

// Authorize lets admins and the review's author change a review.
func (s *ReviewService) Authorize(ctx context.Context, user *model.User, id primitive.ObjectID) error {
	if user.Role == model.RoleAdmin {
		return nil
	}
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if review.User != user.ID {
		return errs.NewForbiddenError(MsgNotReviewAuthor)
	}
	return nil
}

// rollup recomputes the tour's rating fields from its reviews. The read
// and the write are not atomic; concurrent reviews may race.
func (s *ReviewService) rollup(ctx context.Context, tourID primitive.ObjectID) error {
	stats, err := s.reviews.RatingStats(ctx, tourID)
	if err != nil {
		return err
	}

	quantity, average := stats.Rollup()
	err = s.tours.SetRatings(ctx, tourID, quantity, average)
	if errors.Is(err, storeerr.ErrNotFound) {
		s.opts.log(ctx).Warn().Str("tour_id", tourID.Hex()).Msg("rating rollup skipped, tour no longer exists")
		return nil
	}
	return err
}
