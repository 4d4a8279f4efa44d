package storeerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/tours-api/internal/errs"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MessageNotFound is returned for every lookup by id that matched nothing.
const MessageNotFound = "No document found with this id"

// HandleError maps a store failure onto an operational error. ok is false
// when err is not a store failure.
func HandleError(err error) (httpErr *errs.HTTPError, ok bool) {
	var (
		notFound  *NotFoundError
		duplicate *DuplicateError
		invalidID *InvalidIDError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr, true

	case errors.As(err, &notFound):
		code := errorCode(notFound.Collection, "NOT_FOUND")
		return errs.NewNotFoundError(MessageNotFound, &code), true

	case errors.Is(err, ErrNotFound):
		return errs.NewNotFoundError(MessageNotFound, nil), true

	case errors.As(err, &duplicate):
		code := errorCode(duplicate.Collection, "ALREADY_EXISTS")
		msg := fmt.Sprintf("Duplicate field value: %q. Please use another value.", duplicate.Value)
		fields := []errs.FieldError{{
			Field: duplicate.Field,
			Error: humanizeText(duplicate.Field) + " already exists",
		}}
		return errs.NewBadRequestError(msg, &code, fields, nil), true

	case errors.As(err, &invalidID):
		code := "INVALID_ID"
		return errs.NewBadRequestError("Invalid id: "+invalidID.Value, &code, nil, nil), true
	}

	return nil, false
}

// errorCode builds "<ENTITY>_<ACTION>" from a collection name:
// tours + ALREADY_EXISTS -> TOUR_ALREADY_EXISTS.
func errorCode(collection, action string) string {
	if collection == "" {
		collection = "document"
	}
	domain := strings.ToUpper(collection)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}
	return domain + "_" + action
}

// humanizeText turns "tour_user" into "Tour User".
func humanizeText(text string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}
