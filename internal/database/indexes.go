package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Indexes lists the indexes each collection needs. Unique indexes back
// the duplicate checks surfaced to clients.
var Indexes = map[string][]mongo.IndexModel{
	ToursCollection: {
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "price", Value: 1}, {Key: "ratingsAverage", Value: -1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "startLocation", Value: "2dsphere"}}},
	},
	UsersCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "passwordResetToken", Value: 1}}, Options: options.Index().SetSparse(true)},
	},
	ReviewsCollection: {
		{Keys: bson.D{{Key: "tour", Value: 1}, {Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
}

// EnsureIndexes creates every index in Indexes. Creating an index that
// already exists is a no-op, so this runs on every start and from the
// migrate command.
func (db *Database) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, db.DB, db.log)
}

func ensureIndexes(ctx context.Context, mdb *mongo.Database, logger *zerolog.Logger) error {
	for collection, models := range Indexes {
		names, err := mdb.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("creating indexes on %s: %w", collection, err)
		}
		logger.Info().Str("collection", collection).Strs("indexes", names).Msg("indexes ensured")
	}
	return nil
}
