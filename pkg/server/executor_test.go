package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcperrors "github.com/friscolabs/frisco-mcp/pkg/errors"
	"github.com/friscolabs/frisco-mcp/pkg/logging"
	"github.com/friscolabs/frisco-mcp/pkg/protocol"
)

func TestExecuteToolCallParamShapes(t *testing.T) {
	srv := New(testRegistry(t), WithLogger(logging.Noop()))

	tests := []struct {
		name   string
		params string
	}{
		{"absent params", ""},
		{"params not an object", `"echo"`},
		{"missing tool name", `{"arguments":{"text":"x"}}`},
		{"empty tool name", `{"name":"","arguments":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.executeToolCall(context.Background(), json.RawMessage(tt.params))
			require.Error(t, err)
			assert.True(t, mcperrors.IsCode(err, protocol.InvalidParams), "got %v", err)
		})
	}
}

func TestExecuteToolCallSuccess(t *testing.T) {
	srv := New(testRegistry(t), WithLogger(logging.Noop()))

	result, err := srv.executeToolCall(context.Background(),
		json.RawMessage(`{"name":"reverse","arguments":{"text":"abc"}}`))
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "cba", result.Content[0].Text)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	var asNetError net.Error = timeoutErr{}

	assert.True(t, isTimeout(context.DeadlineExceeded))
	assert.True(t, isTimeout(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.True(t, isTimeout(asNetError))
	assert.True(t, isTimeout(fmt.Errorf("request failed: %w", asNetError)))
	assert.False(t, isTimeout(fmt.Errorf("plain failure")))
	assert.False(t, isTimeout(context.Canceled))
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg := ConfigFromEnv()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, DefaultShutdownGrace, cfg.ShutdownGrace)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("FRISCO_MCP_LOG_LEVEL", "debug")
	t.Setenv("FRISCO_MCP_SHUTDOWN_GRACE", "2s")
	t.Setenv("FRISCO_MCP_WEATHER_TIMEOUT", "garbage")

	cfg := ConfigFromEnv()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.ShutdownGrace)
	// Unparseable durations fall back to the default
	assert.NotZero(t, cfg.WeatherTimeout)
}
