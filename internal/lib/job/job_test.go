package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/deppfellow/tours-api/internal/config"
	"github.com/deppfellow/tours-api/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("jonas@example.com", "Jonas Schmedtmann")
	require.NoError(t, err)
	assert.Equal(t, TaskWelcome, task.Type())

	var p WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, WelcomeEmailPayload{To: "jonas@example.com", Name: "Jonas Schmedtmann"}, p)
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	logger := zerolog.Nop()
	cfg := &config.Config{}
	j := &JobService{emails: email.NewClient(cfg, &logger), logger: &logger}

	task, err := NewWelcomeEmailTask("jonas@example.com", "Jonas")
	require.NoError(t, err)
	assert.NoError(t, j.Mux().ProcessTask(context.Background(), task))

	bad := asynq.NewTask(TaskWelcome, []byte("{"))
	err = j.handleWelcomeEmailTask(context.Background(), bad)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
