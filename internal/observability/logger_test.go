package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithRequestID(context.Background(), "req-123")
	LoggerFromContext(ctx, base).Info("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["request_id"] != "req-123" {
		t.Fatalf("expected request_id in log line, got %v", line)
	}

	if LoggerFromContext(context.Background(), base) != base {
		t.Fatal("expected base logger when no request id is set")
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	logger, closer := NewLogger(LogOptions{Level: "info", File: path})
	logger.Info("written")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestInitTelemetryDisabled(t *testing.T) {
	cleanup, err := InitTelemetry(context.Background(), "", slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cleanup()
}
