package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// TourMetric aggregates tours of one difficulty.
type TourMetric struct {
	Difficulty      string  `bson:"_id" json:"difficulty"`
	ToursCount      int     `bson:"toursCount" json:"toursCount"`
	RatingsCount    int     `bson:"ratingsCount" json:"ratingsCount"`
	AverageRating   float64 `bson:"averageRating" json:"averageRating"`
	AveragePrice    float64 `bson:"averagePrice" json:"averagePrice"`
	MinPrice        float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice        float64 `bson:"maxPrice" json:"maxPrice"`
	AverageDuration float64 `bson:"averageDuration" json:"averageDuration"`
}

// MonthlyStat counts tour start dates falling in one month of a year.
type MonthlyStat struct {
	Month      int           `bson:"month" json:"month"`
	ToursCount int           `bson:"toursCount" json:"toursCount"`
	Tours      []MonthlyTour `bson:"tours" json:"tours"`
}

// MonthlyTour is the short form of a tour listed in a MonthlyStat.
type MonthlyTour struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Duration float64            `bson:"duration" json:"duration"`
}

// RatingStats is the rollup of every review of one tour.
type RatingStats struct {
	Quantity int     `bson:"nRating" json:"ratingsQuantity"`
	Average  float64 `bson:"avgRating" json:"ratingsAverage"`
}

// Rollup returns the values stored on the tour: the rounded average, or
// the defaults when the tour has no reviews.
func (s RatingStats) Rollup() (quantity int, average float64) {
	if s.Quantity == 0 {
		return 0, DefaultRatingsAverage
	}
	return s.Quantity, RoundRating(s.Average)
}
