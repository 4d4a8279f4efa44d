package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/tours-api/internal/storeerr"
	"github.com/deppfellow/tours-api/internal/validation"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MsgDocumentUpdated = "Document updated successfully"
	MsgTourRetrieved   = "Tour retrieved successfully"
	MsgUserRetrieved   = "User retrieved successfully"
	MsgReviewRetrieved = "Review retrieved successfully"
)

// IDRequest is a request addressing one document by its path id.
type IDRequest interface {
	validation.Validatable
	GetID() string
}

// PatchRequest is an IDRequest carrying a partial update.
type PatchRequest[P any] interface {
	IDRequest
	Patch() P
}

// GetOne serves a single document under data.<key>.
func GetOne[Req IDRequest, T any](h Handler, req Req, key, message string, get func(context.Context, primitive.ObjectID) (T, error)) echo.HandlerFunc {
	return Handle(h, func(c echo.Context, req Req) (*Response, error) {
		id, err := storeerr.ParseID(req.GetID())
		if err != nil {
			return nil, err
		}
		doc, err := get(c.Request().Context(), id)
		if err != nil {
			return nil, err
		}
		return success(c, message, Data{key: doc}), nil
	}, http.StatusOK, req)
}

// UpdateOne applies the request's patch and answers with data.data.
func UpdateOne[Req PatchRequest[P], P any, T any](h Handler, req Req, update func(context.Context, primitive.ObjectID, P) (T, error)) echo.HandlerFunc {
	return Handle(h, func(c echo.Context, req Req) (*Response, error) {
		id, err := storeerr.ParseID(req.GetID())
		if err != nil {
			return nil, err
		}
		doc, err := update(c.Request().Context(), id, req.Patch())
		if err != nil {
			return nil, err
		}
		return success(c, MsgDocumentUpdated, Data{"data": doc}), nil
	}, http.StatusOK, req)
}

// DeleteOne removes a document and answers 204.
func DeleteOne[Req IDRequest](h Handler, req Req, remove func(context.Context, primitive.ObjectID) error) echo.HandlerFunc {
	return HandleNoContent(h, func(c echo.Context, req Req) error {
		id, err := storeerr.ParseID(req.GetID())
		if err != nil {
			return err
		}
		return remove(c.Request().Context(), id)
	}, http.StatusNoContent, req)
}
