// Package job runs background work on Asynq, a Redis backed queue.
//
// The API enqueues tasks through JobService.Client; the embedded worker
// server processes them in the same binary.
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/tours-api/internal/config"
	"github.com/deppfellow/tours-api/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// JobService holds the Asynq client used to enqueue and the server that
// processes tasks.
type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	emails *email.Client
	logger *zerolog.Logger
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config, emails *email.Client) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
		Logger:   asynqLogger{logger: logger},
		LogLevel: asynq.WarnLevel,
	})

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		emails: emails,
		logger: logger,
	}
}

// Mux routes task types to their handlers.
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcome, j.handleWelcomeEmailTask)
	return mux
}

// Start launches the worker server in the background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")
	return j.server.Start(j.Mux())
}

// Stop waits for running tasks and releases Redis connections.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}

// EnqueueWelcomeEmail schedules the welcome email for a new account.
func (j *JobService) EnqueueWelcomeEmail(ctx context.Context, to, name string) error {
	task, err := NewWelcomeEmailTask(to, name)
	if err != nil {
		return err
	}
	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}
	j.logger.Debug().Str("task_id", info.ID).Str("type", TaskWelcome).Msg("task enqueued")
	return nil
}

// asynqLogger routes Asynq's own logs through zerolog.
type asynqLogger struct {
	logger *zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
