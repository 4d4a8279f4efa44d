package handler

import (
	"github.com/deppfellow/tours-api/internal/service"
	"github.com/deppfellow/tours-api/internal/storeerr"
	"github.com/labstack/echo/v4"
)

const (
	MsgReviewsRetrieved = "Reviews retrieved successfully"
	MsgReviewAdded      = "Review added successfully"
)

type ReviewHandler struct {
	Handler
	reviews *service.ReviewService
}

func NewReviewHandler(h Handler, reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{Handler: h, reviews: reviews}
}

// List serves /reviews and /tours/:tourId/reviews.
func (h *ReviewHandler) List(c echo.Context, req *TourReviewsRequest) (*Response, error) {
	tourID, err := req.TourObjectID()
	if err != nil {
		return nil, err
	}
	values := listValues(c)
	reviews, page, err := h.reviews.List(c.Request().Context(), tourID, values)
	if err != nil {
		return nil, err
	}
	projected, err := projectFields(reviews, values, nil)
	if err != nil {
		return nil, err
	}
	return list(c, MsgReviewsRetrieved, page, "reviews", projected), nil
}

func (h *ReviewHandler) Create(c echo.Context, req *CreateReviewRequest) (*Response, error) {
	tourID, err := storeerr.ParseID(req.TourID)
	if err != nil {
		return nil, err
	}
	review, err := h.reviews.Create(c.Request().Context(), currentUser(c), tourID, service.ReviewInput{
		Review: req.Review,
		Rating: req.Rating,
	})
	if err != nil {
		return nil, err
	}
	return success(c, MsgReviewAdded, Data{"review": review}), nil
}

// RequireReviewOwner lets the review's author or an admin through to the
// :id review. It runs after Protect.
func (h *ReviewHandler) RequireReviewOwner() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := storeerr.ParseID(c.Param("id"))
			if err != nil {
				return err
			}
			if err := h.reviews.Authorize(c.Request().Context(), currentUser(c), id); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func (h *ReviewHandler) Service() *service.ReviewService { return h.reviews }
