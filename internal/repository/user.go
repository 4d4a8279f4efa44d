package repository

import (
	"context"
	"time"

	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(coll *mongo.Collection) *UserRepository {
	return &UserRepository{coll: coll}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	id, err := insert(ctx, r.coll, user)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, ActiveUsers(bson.M{"_id": id}))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, ActiveUsers(bson.M{"email": model.NormalizeEmail(email)}))
}

func (r *UserRepository) FindByResetToken(ctx context.Context, digest string, now time.Time) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, ActiveUsers(bson.M{
		"passwordResetToken":   digest,
		"passwordResetExpires": bson.M{"$gt": now},
	}))
}

func (r *UserRepository) FindSummaries(ctx context.Context, ids []primitive.ObjectID) ([]model.UserSummary, error) {
	if len(ids) == 0 {
		return []model.UserSummary{}, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "photo": 1, "role": 1})
	return findAll[model.UserSummary](ctx, r.coll, ActiveUsers(bson.M{"_id": bson.M{"$in": ids}}), opts)
}

func (r *UserRepository) Find(ctx context.Context, q query.Query) ([]model.User, error) {
	return findAll[model.User](ctx, r.coll, ActiveUsers(q.Filter), findOptions(q))
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) (*model.User, error) {
	return updateOne[model.User](ctx, r.coll, ActiveUsers(bson.M{"_id": id}), set, unset...)
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.coll, ActiveUsers(bson.M{"_id": id}))
}
