// Package database connects to MongoDB.
//
// It handles:
//   - building the client options from config
//   - a slow-command monitor logging through zerolog
//   - optional New Relic instrumentation (nrmongo)
//   - index bootstrap (EnsureIndexes)
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/tours-api/internal/config"
	loggerConfig "github.com/deppfellow/tours-api/internal/logger"
	"github.com/newrelic/go-agent/v3/integrations/nrmongo"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	ToursCollection   = "tours"
	UsersCollection   = "users"
	ReviewsCollection = "reviews"
)

// Database wraps the Mongo client and the application database handle.
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
	log    *zerolog.Logger
}

// New connects, pings and returns the database. The ping is bounded by
// cfg.Database.ConnectTimeout so startup fails fast when Mongo is down.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	monitor := slowCommandMonitor(logger, cfg.Observability.Logging.SlowQueryThreshold)
	if loggerService.GetApplication() != nil {
		monitor = nrmongo.NewCommandMonitor(monitor)
	}

	opts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetAppName(config.ServiceName).
		SetMonitor(monitor).
		SetConnectTimeout(cfg.Database.ConnectTimeout)

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("database", cfg.Database.Name).Msg("connected to the database")

	return &Database{
		Client: client,
		DB:     client.Database(cfg.Database.Name),
		log:    logger,
	}, nil
}

// Collection returns a handle on the named collection.
func (db *Database) Collection(name string) *mongo.Collection {
	return db.DB.Collection(name)
}

// Ping checks the primary is reachable.
func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

func (db *Database) Close(ctx context.Context) error {
	db.log.Info().Msg("closing database connection")
	return db.Client.Disconnect(ctx)
}

// slowCommandMonitor logs commands slower than threshold at warn level.
// A zero threshold disables it.
func slowCommandMonitor(logger *zerolog.Logger, threshold time.Duration) *event.CommandMonitor {
	if threshold <= 0 {
		return nil
	}
	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			if evt.Duration < threshold {
				return
			}
			logger.Warn().
				Str("command", evt.CommandName).
				Str("database", evt.DatabaseName).
				Dur("duration", evt.Duration).
				Msg("slow database command")
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			logger.Debug().
				Str("command", evt.CommandName).
				Str("failure", evt.Failure).
				Dur("duration", evt.Duration).
				Msg("database command failed")
		},
	}
}
