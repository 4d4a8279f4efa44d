package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/deppfellow/tours-api/internal/database"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/query"
	"github.com/deppfellow/tours-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TourStore struct {
	tours *collection[model.Tour]
}

func NewTourStore() *TourStore {
	return &TourStore{tours: newCollection[model.Tour](database.ToursCollection, []string{"name"})}
}

func (s *TourStore) Create(_ context.Context, tour *model.Tour) error {
	id, err := s.tours.insert(tour)
	if err != nil {
		return err
	}
	tour.ID = id
	return nil
}

func (s *TourStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.Tour, error) {
	return s.tours.findOne(bson.M{"_id": id})
}

func (s *TourStore) Find(_ context.Context, q query.Query) ([]model.Tour, error) {
	return s.tours.findAll(repository.VisibleTours(q.Filter), q)
}

func (s *TourStore) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*model.Tour, error) {
	return s.tours.update(bson.M{"_id": id}, set, nil, true)
}

func (s *TourStore) Delete(_ context.Context, id primitive.ObjectID) error {
	return s.tours.delete(bson.M{"_id": id})
}

func (s *TourStore) SetRatings(_ context.Context, id primitive.ObjectID, quantity int, average float64) error {
	_, err := s.tours.update(bson.M{"_id": id}, bson.M{
		"ratingsQuantity": quantity,
		"ratingsAverage":  average,
	}, nil, false)
	return err
}

func (s *TourStore) visible(filter bson.M) ([]model.Tour, error) {
	return s.tours.findAll(repository.VisibleTours(filter), query.Query{})
}

func (s *TourStore) Metrics(_ context.Context, minRating float64) ([]model.TourMetric, error) {
	tours, err := s.visible(bson.M{"ratingsAverage": bson.M{"$gte": minRating}})
	if err != nil {
		return nil, err
	}

	groups := map[string]*model.TourMetric{}
	var keys []string
	for _, t := range tours {
		key := strings.ToUpper(t.Difficulty)
		g, ok := groups[key]
		if !ok {
			g = &model.TourMetric{Difficulty: key, MinPrice: t.Price, MaxPrice: t.Price}
			groups[key] = g
			keys = append(keys, key)
		}
		g.ToursCount++
		g.RatingsCount += t.RatingsQuantity
		g.AverageRating += t.RatingsAverage
		g.AveragePrice += t.Price
		g.AverageDuration += t.Duration
		g.MinPrice = min(g.MinPrice, t.Price)
		g.MaxPrice = max(g.MaxPrice, t.Price)
	}

	out := make([]model.TourMetric, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		n := float64(g.ToursCount)
		g.AverageRating /= n
		g.AveragePrice /= n
		g.AverageDuration /= n
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AverageRating < out[j].AverageRating })
	return out, nil
}

func (s *TourStore) MonthlyStats(_ context.Context, year int) ([]model.MonthlyStat, error) {
	tours, err := s.visible(nil)
	if err != nil {
		return nil, err
	}

	from, to := repository.YearRange(year)
	months := map[int]*model.MonthlyStat{}
	for _, t := range tours {
		for _, d := range t.StartDates {
			d = d.UTC()
			if d.Before(from) || !d.Before(to) {
				continue
			}
			m := int(d.Month())
			stat, ok := months[m]
			if !ok {
				stat = &model.MonthlyStat{Month: m}
				months[m] = stat
			}
			stat.ToursCount++
			stat.Tours = append(stat.Tours, model.MonthlyTour{ID: t.ID, Name: t.Name, Duration: t.Duration})
		}
	}

	out := make([]model.MonthlyStat, 0, len(months))
	for _, stat := range months {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ToursCount != out[j].ToursCount {
			return out[i].ToursCount > out[j].ToursCount
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}
