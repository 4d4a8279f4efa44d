package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/query"
	"github.com/deppfellow/tours-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetricsMinRating is the lowest average rating counted by Metrics.
const MetricsMinRating = 4

// TourDetail is a tour with its guides and reviews populated.
type TourDetail struct {
	Tour    *model.Tour         `json:"tour"`
	Guides  []model.UserSummary `json:"guides"`
	Reviews []model.ReviewView  `json:"reviews"`
}

// MarshalJSON renders the tour's own fields with guides replaced by their
// summaries and the reviews added alongside.
func (d TourDetail) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(d.Tour)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	doc["guides"] = d.Guides
	doc["reviews"] = d.Reviews
	return json.Marshal(doc)
}

type TourService struct {
	tours   repository.TourStore
	users   repository.UserStore
	reviews repository.ReviewStore
	opts    *Options
}

func NewTourService(repos *repository.Repositories, opts *Options) *TourService {
	return &TourService{
		tours:   repos.Tours,
		users:   repos.Users,
		reviews: repos.Reviews,
		opts:    opts,
	}
}

// List runs a listing query built from the request's query string and
// returns the page that was served.
func (s *TourService) List(ctx context.Context, values url.Values) ([]model.Tour, int64, error) {
	features := query.New(values)
	q, err := features.Build()
	if err != nil {
		return nil, 0, err
	}

	tours, err := s.tours.Find(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return tours, features.Page(), nil
}

func (s *TourService) GetByID(ctx context.Context, id primitive.ObjectID) (*TourDetail, error) {
	tour, err := s.tours.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	guides := []model.UserSummary{}
	if len(tour.Guides) > 0 {
		if guides, err = s.users.FindSummaries(ctx, tour.Guides); err != nil {
			return nil, err
		}
	}

	reviews, err := s.reviews.Find(ctx, query.Query{
		Filter: bson.M{"tour": tour.ID},
		Sort:   bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []model.ReviewView{}
	}

	return &TourDetail{Tour: tour, Guides: guides, Reviews: reviews}, nil
}

func (s *TourService) Create(ctx context.Context, input *model.TourInput) (*model.Tour, error) {
	tour := input.Tour(s.opts.now())
	if err := tour.Validate(); err != nil {
		return nil, err
	}
	if err := s.tours.Create(ctx, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

// UpdateByID validates the patched tour as a whole before storing the
// changed fields.
func (s *TourService) UpdateByID(ctx context.Context, id primitive.ObjectID, patch *model.TourPatch) (*model.Tour, error) {
	tour, err := s.tours.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(tour)
	if err := tour.Validate(); err != nil {
		return nil, err
	}

	set := patch.Set(tour)
	if len(set) == 0 {
		return tour, nil
	}
	return s.tours.Update(ctx, id, set)
}

func (s *TourService) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	return s.tours.Delete(ctx, id)
}

func (s *TourService) Metrics(ctx context.Context) ([]model.TourMetric, error) {
	metrics, err := s.tours.Metrics(ctx, MetricsMinRating)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = []model.TourMetric{}
	}
	return metrics, nil
}

// MonthlyStats parses year from the path and returns its monthly buckets.
func (s *TourService) MonthlyStats(ctx context.Context, year string) ([]model.MonthlyStat, error) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 || y > 9999 {
		return nil, errs.New(http.StatusBadRequest, "Invalid year: "+year)
	}

	stats, err := s.tours.MonthlyStats(ctx, y)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []model.MonthlyStat{}
	}
	return stats, nil
}
