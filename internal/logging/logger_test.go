package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in, slog.LevelWarn); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "rejected", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "rejected=2") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestNew_FanOutToFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "clean.log")

	logger, closer, err := New(Options{Level: "info", Format: "json", File: path}, &console)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.With("run_id", "r1").Debug("debug detail")
	logger.Info("pass complete", "pass", "email")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if strings.Contains(console.String(), "debug detail") {
		t.Errorf("console received debug record")
	}
	if !strings.Contains(console.String(), "pass complete") {
		t.Errorf("console missing info record")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("file has %d lines, want 2: %q", len(lines), data)
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("file line not JSON: %v", err)
	}
	if first["run_id"] != "r1" || first["msg"] != "debug detail" {
		t.Errorf("first record = %v", first)
	}
}

func TestSetup_Idempotent(t *testing.T) {
	l1, _, err := Setup(Options{Level: "debug"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	l2, _, _ := Setup(Options{Level: "error", File: "/nonexistent/dir/x.log"})
	if l1 != l2 {
		t.Error("second Setup built a new logger")
	}
	if slog.Default() != l1 {
		t.Error("Setup did not install the default logger")
	}
}

func TestFromContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	WithFields(ctx, "file", "a.csv").Info("clean started")

	out := buf.String()
	if !strings.Contains(out, "request_id=req-42") || !strings.Contains(out, "file=a.csv") {
		t.Errorf("missing context fields: %q", out)
	}
}
