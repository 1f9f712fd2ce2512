package adapter

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requirePOSIXShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("analyzer runner tests drive a POSIX shell")
	}
}

func TestLocalAnalyzerRunner_CapturesStdout(t *testing.T) {
	requirePOSIXShell(t)

	runner := NewLocalAnalyzerRunner()

	result := runner.Run(context.Background(), "sh", "-c", "echo report; echo chatter >&2")

	require.NoError(t, result.Err)
	assert.Equal(t, "sh", result.Tool)
	assert.Equal(t, "report\n", string(result.Raw))
	assert.False(t, result.TimedOut)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestLocalAnalyzerRunner_NonZeroExitKeepsOutput(t *testing.T) {
	requirePOSIXShell(t)

	runner := NewLocalAnalyzerRunner()

	result := runner.Run(context.Background(), "sh", "-c", "echo findings; exit 4")

	require.Error(t, result.Err)
	assert.Equal(t, "findings\n", string(result.Raw))
	assert.False(t, result.TimedOut)
}

func TestLocalAnalyzerRunner_Timeout(t *testing.T) {
	requirePOSIXShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	runner := NewLocalAnalyzerRunner()

	result := runner.Run(ctx, "sh", "-c", "sleep 5")

	assert.True(t, result.TimedOut)
	assert.Empty(t, result.Raw)
}

func TestLocalAnalyzerRunner_MissingBinary(t *testing.T) {
	runner := NewLocalAnalyzerRunner()

	result := runner.Run(context.Background(), "definitely-not-an-analyzer")

	require.Error(t, result.Err)
	assert.Empty(t, result.Raw)
}
