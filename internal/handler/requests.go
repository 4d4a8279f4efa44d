package handler

import (
	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/service"
	"github.com/deppfellow/tours-api/internal/storeerr"
	"github.com/deppfellow/tours-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MsgMissingCredentials = "Please provide email and password"
	MsgPasswordMismatch   = "Passwords don't match"
	MsgInvalidTourBody    = "Invalid body. Must contain object 'tour' with required fields: 'name, duration, price'"
	MsgMissingTourPatch   = "Invalid body. Must contain object 'tour'"
)

// EmptyRequest is bound by routes that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error { return nil }

// ByIDRequest carries the :id path parameter.
type ByIDRequest struct {
	ID string `param:"id" json:"-" validate:"required"`
}

func (r *ByIDRequest) Validate() error { return validation.Struct(r) }

func (r *ByIDRequest) GetID() string { return r.ID }

func confirmPassword(password, confirm string) validation.CustomValidationErrors {
	if password != confirm {
		return validation.CustomValidationErrors{{Field: "passwordConfirm", Message: MsgPasswordMismatch}}
	}
	return nil
}

type SignupRequest struct {
	Name            string `json:"name" validate:"required,max=60"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

func (r *SignupRequest) Validate() error {
	if mismatch := confirmPassword(r.Password, r.PasswordConfirm); mismatch != nil {
		return validation.Merge(validation.Struct(r), mismatch)
	}
	return validation.Struct(r)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return errs.NewBadRequestError(MsgMissingCredentials, nil, nil, nil)
	}
	return nil
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Validate() error { return validation.Struct(r) }

type ResetPasswordRequest struct {
	Token           string `param:"token" json:"-" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

func (r *ResetPasswordRequest) Validate() error {
	if mismatch := confirmPassword(r.Password, r.PasswordConfirm); mismatch != nil {
		return validation.Merge(validation.Struct(r), mismatch)
	}
	return validation.Struct(r)
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

func (r *UpdatePasswordRequest) Validate() error {
	if mismatch := confirmPassword(r.Password, r.PasswordConfirm); mismatch != nil {
		return validation.Merge(validation.Struct(r), mismatch)
	}
	return validation.Struct(r)
}

// UpdateProfileRequest binds only name and photo; any other key in the
// body is ignored.
type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=60"`
	Photo           *string `json:"photo" validate:"omitempty,min=1"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Password != nil || r.PasswordConfirm != nil {
		return errs.NewBadRequestError(service.MsgPasswordOnRoute, nil, nil, nil)
	}
	return validation.Struct(r)
}

type UpdateUserRequest struct {
	ByIDRequest
	Name   *string `json:"name" validate:"omitempty,min=1,max=60"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Photo  *string `json:"photo"`
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

func (r *UpdateUserRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	if r.Role != nil {
		if _, err := model.ParseRole(*r.Role); err != nil {
			return validation.CustomValidationErrors{{Field: "role", Message: "must be one of: user guide lead-guide admin"}}
		}
	}
	return nil
}

func (r *UpdateUserRequest) Patch() *model.UserPatch {
	patch := &model.UserPatch{Name: r.Name, Email: r.Email, Photo: r.Photo, Active: r.Active}
	if r.Role != nil {
		role, _ := model.ParseRole(*r.Role)
		patch.Role = &role
	}
	return patch
}

// CreateTourRequest expects the tour under a "tour" key.
type CreateTourRequest struct {
	Tour *model.TourInput `json:"tour"`
}

func (r *CreateTourRequest) Validate() error {
	if r.Tour == nil || r.Tour.Name == "" || r.Tour.Duration == 0 || r.Tour.Price == 0 {
		return errs.NewBadRequestError(MsgInvalidTourBody, nil, nil, nil)
	}
	return nil
}

type UpdateTourRequest struct {
	ByIDRequest
	Tour *model.TourPatch `json:"tour"`
}

func (r *UpdateTourRequest) Validate() error {
	if r.Tour == nil {
		return errs.NewBadRequestError(MsgMissingTourPatch, nil, nil, nil)
	}
	return r.ByIDRequest.Validate()
}

func (r *UpdateTourRequest) Patch() *model.TourPatch { return r.Tour }

type MonthlyStatsRequest struct {
	Year string `param:"year" validate:"required"`
}

func (r *MonthlyStatsRequest) Validate() error { return validation.Struct(r) }

// TourReviewsRequest carries the optional :tourId of nested review routes.
type TourReviewsRequest struct {
	TourID string `param:"tourId" json:"-"`
}

func (r *TourReviewsRequest) Validate() error { return nil }

// TourObjectID returns nil on routes without a tour.
func (r *TourReviewsRequest) TourObjectID() (*primitive.ObjectID, error) {
	if r.TourID == "" {
		return nil, nil
	}
	id, err := storeerr.ParseID(r.TourID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

type CreateReviewRequest struct {
	TourID string  `param:"tourId" json:"-" validate:"required"`
	Review string  `json:"review" validate:"required"`
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
}

func (r *CreateReviewRequest) Validate() error { return validation.Struct(r) }

type UpdateReviewRequest struct {
	ByIDRequest
	Review *string  `json:"review" validate:"omitempty,min=1"`
	Rating *float64 `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

func (r *UpdateReviewRequest) Validate() error { return validation.Struct(r) }

func (r *UpdateReviewRequest) Patch() *model.ReviewPatch {
	return &model.ReviewPatch{Review: r.Review, Rating: r.Rating}
}
