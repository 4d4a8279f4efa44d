package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// InvalidInputPrefix starts every aggregated validation message.
const InvalidInputPrefix = "Invalid input data."

// Validatable is implemented by request and document types that know how
// to validate themselves.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a single validation issue for one field.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors aggregates field failures and satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return Message(c)
}

// FieldErrors converts the aggregate into the response shape.
func (c CustomValidationErrors) FieldErrors() []errs.FieldError {
	fieldErrors := make([]errs.FieldError, 0, len(c))
	for _, e := range c {
		fieldErrors = append(fieldErrors, errs.FieldError{Field: e.Field, Error: e.Message})
	}
	return fieldErrors
}

// Message renders "Invalid input data. name is required, price must be ...".
// A message that is already a sentence (capitalized) is used without the
// field prefix.
func Message(c CustomValidationErrors) string {
	parts := make([]string, 0, len(c))
	for _, e := range c {
		if r, _ := utf8.DecodeRuneInString(e.Message); unicode.IsUpper(r) {
			parts = append(parts, e.Message)
			continue
		}
		parts = append(parts, e.Field+" "+e.Message)
	}
	return strings.TrimSpace(InvalidInputPrefix + " " + strings.Join(parts, ", "))
}

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator. Field names in reported errors
// follow the json tag of each field.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v with the shared validator and returns
// CustomValidationErrors on failure.
func Struct(v any) error {
	if err := Validator().Struct(v); err != nil {
		return FromValidator(err)
	}
	return nil
}

// Merge joins several validation results, dropping nil entries.
func Merge(results ...error) error {
	var merged CustomValidationErrors
	for _, err := range results {
		if err == nil {
			continue
		}
		var custom CustomValidationErrors
		if errors.As(err, &custom) {
			merged = append(merged, custom...)
			continue
		}
		return err
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// BindAndValidate binds request data into payload and validates it.
//
// payload must be a pointer to a struct. Bind failures and validation
// failures both produce a 400 *errs.HTTPError.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindMessage(err), nil, nil, nil)
	}

	if err := payload.Validate(); err != nil {
		return ToHTTPError(err)
	}

	return nil
}

// ToHTTPError converts a validation failure into a 400. Errors that are
// not validation failures are returned unchanged.
func ToHTTPError(err error) error {
	var custom CustomValidationErrors
	if !errors.As(err, &custom) {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		custom = FromValidator(verrs).(CustomValidationErrors)
	}
	return errs.NewBadRequestError(Message(custom), nil, custom.FieldErrors(), nil)
}

func bindMessage(err error) string {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Internal != nil {
			return fmt.Sprintf("Invalid request body: %v", echoErr.Internal)
		}
		return fmt.Sprintf("Invalid request body: %v", echoErr.Message)
	}
	return "Invalid request body"
}

// FromValidator converts validator.ValidationErrors into
// CustomValidationErrors with client-friendly messages. Other errors are
// returned unchanged.
func FromValidator(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	custom := make(CustomValidationErrors, 0, len(validationErrors))
	for _, fe := range validationErrors {
		custom = append(custom, CustomValidationError{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}
	return custom
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless", "required_with":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "does not match"
	case "hexadecimal", "len":
		return "must be a valid id"
	case "dive":
		return "some items are invalid"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
