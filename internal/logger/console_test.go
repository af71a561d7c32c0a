package logger

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "DEBUG")

	require.NotNil(t, logger)
	assert.Equal(t, "debug", logger.Level())
	assert.False(t, logger.colorOutput, "buffers never get color")

	assert.Equal(t, "info", NewConsoleLogger(buf, "").Level())
	assert.Equal(t, "info", NewConsoleLogger(buf, "verbose").Level())
	assert.Equal(t, "warn", NewConsoleLogger(buf, "  Warn ").Level())
}

// TestLogLevelFiltering verifies that messages are filtered based on log level
func TestLogLevelFiltering(t *testing.T) {
	levels := []string{"trace", "debug", "info", "warn", "error"}

	for ci, configured := range levels {
		for mi, message := range levels {
			t.Run(fmt.Sprintf("%s/%s", configured, message), func(t *testing.T) {
				buf := &bytes.Buffer{}
				logger := NewConsoleLogger(buf, configured)

				switch message {
				case "trace":
					logger.LogTrace("msg")
				case "debug":
					logger.LogDebug("msg")
				case "info":
					logger.LogInfo("msg")
				case "warn":
					logger.LogWarn("msg")
				case "error":
					logger.LogError("msg")
				}

				if mi >= ci {
					assert.Contains(t, buf.String(), "["+strings.ToUpper(message)+"] msg")
				} else {
					assert.Empty(t, buf.String())
				}
			})
		}
	}
}

func TestLogFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogWarn("cache lookup for /apps failed")

	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] \[WARN\] cache lookup for /apps failed\n$`, buf.String())
}

// TestTimestampFormat verifies timestamps are formatted correctly as HH:MM:SS.
func TestTimestampFormat(t *testing.T) {
	ts := timestamp()

	require.Len(t, ts, 8)
	_, err := time.Parse("15:04:05", ts)
	assert.NoError(t, err)
}

// TestConcurrentLogging verifies lines are never interleaved.
func TestConcurrentLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "debug")

	const goroutines = 20
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.LogDebug(fmt.Sprintf("listing dir-%d", i))
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, goroutines)
	for _, line := range lines {
		assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] \[DEBUG\] listing dir-\d+$`, line)
	}
}

func TestNilWriter(t *testing.T) {
	logger := NewConsoleLogger(nil, "trace")

	assert.NotPanics(t, func() {
		logger.LogTrace("x")
		logger.LogError("x")
		logger.LogSearchSummary("x", 1, 1, time.Second)
	})
}

func TestLogSearchSummary(t *testing.T) {
	tests := []struct {
		name     string
		matches  int
		duration time.Duration
		want     string
	}{
		{name: "none", matches: 0, duration: 12 * time.Millisecond, want: `Found 0 matches for "app" in 2 directories (12ms)`},
		{name: "one", matches: 1, duration: 2 * time.Second, want: `Found 1 match for "app" in 2 directories (2s)`},
		{name: "many", matches: 5, duration: 90 * time.Second, want: `Found 5 matches for "app" in 2 directories (1m30s)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			NewConsoleLogger(buf, "info").LogSearchSummary("app", 2, tt.matches, tt.duration)
			assert.Contains(t, buf.String(), "[INFO] "+tt.want)
		})
	}

	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "warn").LogSearchSummary("app", 2, 1, time.Second)
	assert.Empty(t, buf.String(), "summary is info level")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{5 * time.Second, "5s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 300*time.Millisecond, "2m"},
		{61 * time.Second, "1m1s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), "formatDuration(%v)", tt.in)
	}
}
