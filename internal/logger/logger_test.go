package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected logger to be enabled")
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  zerolog.Level
	}{
		{name: "unset defaults to info", value: "", want: zerolog.InfoLevel},
		{name: "debug", value: "debug", want: zerolog.DebugLevel},
		{name: "warn", value: "warn", want: zerolog.WarnLevel},
		{name: "mixed case", value: "ERROR", want: zerolog.ErrorLevel},
		{name: "whitespace trimmed", value: " trace ", want: zerolog.TraceLevel},
		{name: "garbage defaults to info", value: "loud", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.value)
			if got := levelFromEnv(); got != tt.want {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewHonorsLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	if got := New().GetLevel(); got != zerolog.ErrorLevel {
		t.Errorf("New().GetLevel() = %v, want error", got)
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", buf.String())
	}
}

func TestWithContext(t *testing.T) {
	ctx := WithContext(context.Background(), New())
	if ctx.Value(LoggerKey) == nil {
		t.Error("Expected logger in context, got nil")
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}
