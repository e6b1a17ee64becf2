package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/internal/core/ports/mocks"
	"billing-webhook-service/internal/service"
	"billing-webhook-service/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMergeOptions(t *testing.T) {
	defaults := ports.RetryOptions{MaxBatch: 25, MaxRetryCount: 5, PendingMinAge: time.Minute}

	tests := []struct {
		name  string
		flags ports.RetryOptions
		want  ports.RetryOptions
	}{
		{"no flags", ports.RetryOptions{PendingMinAge: -1}, defaults},
		{"batch only", ports.RetryOptions{MaxBatch: 100, PendingMinAge: -1}, ports.RetryOptions{MaxBatch: 100, MaxRetryCount: 5, PendingMinAge: time.Minute}},
		{"zero age disables filter", ports.RetryOptions{}, ports.RetryOptions{MaxBatch: 25, MaxRetryCount: 5}},
		{"all", ports.RetryOptions{MaxBatch: 1, MaxRetryCount: 2, PendingMinAge: time.Second}, ports.RetryOptions{MaxBatch: 1, MaxRetryCount: 2, PendingMinAge: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeOptions(defaults, tt.flags))
		})
	}
}

func TestRunBatch(t *testing.T) {
	opts := ports.RetryOptions{MaxBatch: 25, MaxRetryCount: 5}

	t.Run("passes configured limits", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		scheduler := mocks.NewMockRetryScheduler(ctrl)
		scheduler.EXPECT().Retry(gomock.Any(), opts).Return(&ports.RetryReport{}, nil)

		runBatch(scheduler, opts, zerolog.Nop())
	})

	t.Run("lock held is not an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		scheduler := mocks.NewMockRetryScheduler(ctrl)
		scheduler.EXPECT().Retry(gomock.Any(), opts).Return(nil, apperror.ErrLockHeld())

		var buf bytes.Buffer
		runBatch(scheduler, opts, zerolog.New(&buf).Level(zerolog.InfoLevel))
		assert.Empty(t, buf.String())
	})

	t.Run("failure is logged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		scheduler := mocks.NewMockRetryScheduler(ctrl)
		scheduler.EXPECT().Retry(gomock.Any(), opts).Return(nil, errors.New("db down"))

		var buf bytes.Buffer
		runBatch(scheduler, opts, zerolog.New(&buf))
		assert.Contains(t, buf.String(), "retry run failed")
	})
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("BWS_JWT_SECRET", "test-jwt-secret-key-32bytes!!")
	configPath := ""

	cmd := tokenCmd(&configPath)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--subject", "ops"})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Token  string `json:"token"`
		Expiry int64  `json:"expiry"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Greater(t, resp.Expiry, time.Now().Unix())

	claims, err := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", time.Hour, "billing-webhook-service").Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	configPath := ""
	cmd := tokenCmd(&configPath)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/billing?sslmode=disable",
		migrateURL("postgres://u:p@db:5432/billing?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/billing", migrateURL("postgresql://u@db/billing"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}

func TestMigrateCommand_RejectsUnknownAction(t *testing.T) {
	configPath := ""
	cmd := migrateCmd(&configPath)
	cmd.SetArgs([]string{"sideways"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	require.Error(t, cmd.Execute())
}
