package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/eralens-api/internal/config"
	"github.com/phrazzld/eralens-api/internal/events"
	"github.com/phrazzld/eralens-api/internal/platform/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			LogLevel:       "info",
			MaxUploadBytes: 8 << 20,
		},
		Scheduler: config.SchedulerConfig{
			WorkerCount: 2,
		},
		LLM: config.LLMConfig{
			GeminiAPIKey:      "test-api-key",
			ModelName:         "gemini-test-model",
			MaxRetries:        1,
			RetryDelaySeconds: 0,
		},
	}
}

func TestNewApplication(t *testing.T) {
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := newApplication(context.Background(), testConfig(), testLogger)
	require.NoError(t, err)
	defer app.cleanup()

	assert.NotNil(t, app.transformer)
	assert.NotNil(t, app.runScheduler)
	assert.NotNil(t, app.composer)
	assert.NotNil(t, app.runService)
	assert.NotNil(t, app.eventEmitter)
}

func TestNewApplicationRequiresAPIKey(t *testing.T) {
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig()
	cfg.LLM.GeminiAPIKey = ""

	app, err := newApplication(context.Background(), cfg, testLogger)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "failed to initialize LLM transformer")
}

func TestJobStatusLogHandler(t *testing.T) {
	buf := &logger.TestLogBuffer{}
	handler := &JobStatusLogHandler{logger: logger.New(buf, "debug")}

	runID := uuid.New()

	t.Run("progress_logged_at_info", func(t *testing.T) {
		buf.Reset()
		event := events.NewJobStatusEvent(runID, "1950s", "done", "")
		require.NoError(t, handler.HandleEvent(context.Background(), event))

		entries, err := buf.GetLogEntries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "INFO", entries[0]["level"])
		assert.Equal(t, "1950s", entries[0]["era"])
		assert.Equal(t, "done", entries[0]["status"])
	})

	t.Run("failure_logged_at_warn", func(t *testing.T) {
		buf.Reset()
		event := events.NewJobStatusEvent(runID, "1960s", "error", "model refused the request")
		require.NoError(t, handler.HandleEvent(context.Background(), event))

		entries, err := buf.GetLogEntries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "WARN", entries[0]["level"])
		assert.Equal(t, "model refused the request", entries[0]["error_message"])
	})
}
