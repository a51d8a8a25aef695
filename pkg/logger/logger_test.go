package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
		_ = Init()
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	logger.Info(context.Background(), "test message", String("k", "v"), Bool("ok", true))
	logger.Debug(context.Background(), "below default level")

	out := buf.String()
	if !strings.Contains(out, "msg=\"test message\"") || !strings.Contains(out, "k=v") || !strings.Contains(out, "ok=true") {
		t.Errorf("unexpected text output: %s", out)
	}
	if strings.Contains(out, "below default level") {
		t.Error("debug entry should be filtered at the default level")
	}
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf), WithFormat("json")); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = Init() }()

	namedLogger := Named("store")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	namedLogger.Info(context.Background(), "test message", Int("rows", 2))
	if !strings.Contains(buf.String(), `"store":{"rows":2`) {
		t.Errorf("expected fields grouped under the logger name, got %s", buf.String())
	}
}

func TestLoggerOutputAndFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf), WithFormat("json")); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	defer func() { _ = Init() }()

	Get().With(String("session_id", "s-1")).Info(context.Background(), "store written", Int("rows", 3))

	out := buf.String()
	for _, want := range []string{`"msg":"store written"`, `"session_id":"s-1"`, `"rows":3`, `"source":`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got %s", want, out)
		}
	}
}

func TestLoggerUnknownFormat(t *testing.T) {
	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if err := Init(); err != nil {
		t.Fatalf("failed to reinitialize logger: %v", err)
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = Init() }()

	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Get().Info(context.Background(), "hidden")
	Get().Warn(context.Background(), "shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn entry should be written at warn level")
	}

	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	if l == nil {
		t.Fatal("nop logger is nil")
	}
	// Must not panic even before Init.
	l.Named("x").With(String("k", "v")).Info(context.Background(), "discarded")
}
