package memory

import (
	"context"
	"time"

	"github.com/deppfellow/tours-api/internal/database"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/query"
	"github.com/deppfellow/tours-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore struct {
	users *collection[model.User]
}

func NewUserStore() *UserStore {
	return &UserStore{users: newCollection[model.User](database.UsersCollection, []string{"email"})}
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	id, err := s.users.insert(user)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	return s.users.findOne(repository.ActiveUsers(bson.M{"_id": id}))
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return s.users.findOne(repository.ActiveUsers(bson.M{"email": model.NormalizeEmail(email)}))
}

func (s *UserStore) FindByResetToken(_ context.Context, digest string, now time.Time) (*model.User, error) {
	return s.users.findOne(repository.ActiveUsers(bson.M{
		"passwordResetToken":   digest,
		"passwordResetExpires": bson.M{"$gt": now},
	}))
}

func (s *UserStore) FindSummaries(_ context.Context, ids []primitive.ObjectID) ([]model.UserSummary, error) {
	if len(ids) == 0 {
		return []model.UserSummary{}, nil
	}
	users, err := s.users.findAll(repository.ActiveUsers(bson.M{"_id": bson.M{"$in": ids}}), query.Query{})
	if err != nil {
		return nil, err
	}
	out := make([]model.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out, nil
}

func (s *UserStore) Find(_ context.Context, q query.Query) ([]model.User, error) {
	return s.users.findAll(repository.ActiveUsers(q.Filter), q)
}

func (s *UserStore) Update(_ context.Context, id primitive.ObjectID, set bson.M, unset ...string) (*model.User, error) {
	return s.users.update(repository.ActiveUsers(bson.M{"_id": id}), set, unset, true)
}

func (s *UserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	return s.users.delete(repository.ActiveUsers(bson.M{"_id": id}))
}

// author returns the name and photo of a user, active or not.
func (s *UserStore) author(id primitive.ObjectID) *model.UserSummary {
	u, err := s.users.findOne(bson.M{"_id": id})
	if err != nil {
		return nil
	}
	return &model.UserSummary{ID: u.ID, Name: u.Name, Photo: u.Photo}
}
