package service

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/lib/storage"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/query"
	"github.com/deppfellow/tours-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MsgNotAnImage      = "Not an image! Please upload only images."
	MsgPhotoDisabled   = "Photo uploads are not available."
	MsgPasswordOnRoute = "Cannot update password field with this route."
)

type UserService struct {
	users repository.UserStore
	opts  *Options
}

func NewUserService(repos *repository.Repositories, opts *Options) *UserService {
	return &UserService{users: repos.Users, opts: opts}
}

func (s *UserService) List(ctx context.Context, values url.Values) ([]model.User, int64, error) {
	features := query.New(values)
	q, err := features.Build()
	if err != nil {
		return nil, 0, err
	}

	users, err := s.users.Find(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return users, features.Page(), nil
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateByID is the admin update; the merged user is validated before the
// changed fields are stored.
func (s *UserService) UpdateByID(ctx context.Context, id primitive.ObjectID, patch *model.UserPatch) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(user)
	if err := user.Validate(); err != nil {
		return nil, err
	}

	set := patch.Set(user)
	if len(set) == 0 {
		return user, nil
	}
	return s.users.Update(ctx, id, set)
}

func (s *UserService) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	return s.users.Delete(ctx, id)
}

// UpdateProfile changes the caller's own name and photo. Anything else
// must go through a dedicated route.
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, name, photo *string) (*model.User, error) {
	patch := &model.UserPatch{Name: name, Photo: photo}
	return s.UpdateByID(ctx, user.ID, patch)
}

// Deactivate hides the account from every user query.
func (s *UserService) Deactivate(ctx context.Context, user *model.User) error {
	_, err := s.users.Update(ctx, user.ID, bson.M{"active": false})
	return err
}

// PhotosEnabled reports whether a photo store is configured.
func (s *UserService) PhotosEnabled() bool { return s.opts.Photos != nil }

// UploadPhoto stores an image in object storage and points the user's
// photo at it.
func (s *UserService) UploadPhoto(ctx context.Context, user *model.User, r io.Reader, size int64, contentType string) (*model.User, error) {
	if s.opts.Photos == nil {
		return nil, errs.New(http.StatusServiceUnavailable, MsgPhotoDisabled)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errs.NewBadRequestError(MsgNotAnImage, nil, nil, nil)
	}

	key := storage.UserPhotoKey(user.ID.Hex(), s.opts.now().Unix(), contentType)
	stored, err := s.opts.Photos.Put(ctx, key, r, size, contentType)
	if err != nil {
		return nil, err
	}
	return s.users.Update(ctx, user.ID, bson.M{"photo": stored})
}

// Promote grants role to the account behind email. Signup only ever
// creates plain users, so privileged accounts are bootstrapped here.
func (s *UserService) Promote(ctx context.Context, email string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, errs.NewBadRequestError("Invalid role: "+role.String(), nil, nil, nil)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.users.Update(ctx, user.ID, bson.M{"role": role})
}
