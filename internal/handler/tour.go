package handler

import (
	"net/url"

	"github.com/deppfellow/tours-api/internal/service"
	"github.com/labstack/echo/v4"
)

const listQueryKey = "list_query"

const (
	MsgToursRetrieved = "Tours retrieved successfully"
	MsgTourAdded      = "Tour added successfully"
	MsgTourMetrics    = "Tour metrics retrieved successfully"
	MsgMonthlyPlan    = "Monthly plan retrieved successfully"
)

// tourVirtuals maps virtual JSON fields of a tour to their source field.
var tourVirtuals = map[string]string{"durationWeeks": "duration"}

// topToursQuery is the listing behind /tours/top-5-cheap.
var topToursQuery = url.Values{
	"limit":  {"5"},
	"sort":   {"-ratingsAverage,price"},
	"fields": {"name,imageCover,duration,difficulty,price,ratingsAverage,ratingsQuantity"},
}

type TourHandler struct {
	Handler
	tours *service.TourService
}

func NewTourHandler(h Handler, tours *service.TourService) *TourHandler {
	return &TourHandler{Handler: h, tours: tours}
}

// AliasTopTours rewrites a copy of the query string into the five best
// rated, cheapest tours. The request's own query is left untouched.
func AliasTopTours() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			values := url.Values{}
			for k, v := range c.QueryParams() {
				values[k] = append([]string(nil), v...)
			}
			for k, v := range topToursQuery {
				values[k] = v
			}
			if values.Get("page") == "" {
				values.Set("page", "1")
			}
			c.Set(listQueryKey, values)
			return next(c)
		}
	}
}

// listValues returns the query a listing should run.
func listValues(c echo.Context) url.Values {
	if values, ok := c.Get(listQueryKey).(url.Values); ok {
		return values
	}
	return c.QueryParams()
}

func (h *TourHandler) List(c echo.Context, _ *EmptyRequest) (*Response, error) {
	values := listValues(c)
	tours, page, err := h.tours.List(c.Request().Context(), values)
	if err != nil {
		return nil, err
	}

	projected, err := projectFields(tours, values, tourVirtuals)
	if err != nil {
		return nil, err
	}
	return list(c, MsgToursRetrieved, page, "tours", projected), nil
}

func (h *TourHandler) Create(c echo.Context, req *CreateTourRequest) (*Response, error) {
	tour, err := h.tours.Create(c.Request().Context(), req.Tour)
	if err != nil {
		return nil, err
	}
	return success(c, MsgTourAdded, Data{"tour": tour}), nil
}

func (h *TourHandler) Metrics(c echo.Context, _ *EmptyRequest) (*Response, error) {
	metrics, err := h.tours.Metrics(c.Request().Context())
	if err != nil {
		return nil, err
	}
	return success(c, MsgTourMetrics, Data{"stats": metrics}), nil
}

func (h *TourHandler) MonthlyStats(c echo.Context, req *MonthlyStatsRequest) (*Response, error) {
	plan, err := h.tours.MonthlyStats(c.Request().Context(), req.Year)
	if err != nil {
		return nil, err
	}
	return success(c, MsgMonthlyPlan, Data{"plan": plan}), nil
}

func (h *TourHandler) Service() *service.TourService { return h.tours }
