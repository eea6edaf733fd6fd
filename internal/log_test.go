package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  LogLevel
		known bool
	}{
		{"ERROR", LogLevelError, true},
		{"warn", LogLevelWarn, true},
		{" Info ", LogLevelInfo, true},
		{"DEBUG", LogLevelDebug, true},
		{"TRACE", LogLevelTrace, true},
		{"", LogLevelInfo, false},
		{"verbose", LogLevelInfo, false},
	}
	for _, tt := range tests {
		got, known := ParseLogLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.known, known, tt.in)
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := NewNopLogger().With("metric", "checkout")
	l.Info("analyzed %d comparisons", 3)
	l.Trace("hidden")
	assert.Equal(t, LogLevelError, l.GetLevel())
}
