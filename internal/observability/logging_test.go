package observability

import (
	"context"
	"testing"

	"servicelog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Disabled(t *testing.T) {
	logger := NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	require.NotNil(t, logger)

	// No-op logger must swallow everything without panicking.
	ctx := context.Background()
	logger.Info(ctx, "ignored", map[string]interface{}{"k": "v"})
	logger.Error(ctx, "ignored", assert.AnError, nil)
	assert.NoError(t, logger.Sync())
}

func TestNewLogger_NilConfig(t *testing.T) {
	logger := NewLogger(nil)
	require.NotNil(t, logger)
	logger.Warn(context.Background(), "still safe", nil)
}

func TestLogger_MergeFields(t *testing.T) {
	logger := NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})

	merged := logger.mergeFields(
		map[string]interface{}{"a": 1, "b": 2},
		nil,
		map[string]interface{}{"b": 3, "c": 4},
	)

	assert.Equal(t, map[string]interface{}{"a": 1, "b": 3, "c": 4}, merged)
	assert.Empty(t, logger.mergeFields())
	assert.Empty(t, logger.mergeFields(nil))
}
