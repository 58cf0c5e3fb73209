package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo)

	log.Info("select failed", "error", errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "err=boom") {
		t.Errorf("output = %q, want err=boom", out)
	}
	if strings.Contains(out, "error=") {
		t.Errorf("output = %q, should not contain error=", out)
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "branchwalk.log")

	log, closer, err := Open(path, "debug")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	log.Debug("layout deferred", "steps", 3)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "layout deferred") {
		t.Errorf("log file = %q", data)
	}
}

func TestOpen_EmptyPathDiscards(t *testing.T) {
	log, closer, err := Open("", "info")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	log.Info("nowhere")
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if log.Enabled(context.Background(), slog.LevelError) {
		t.Error("nop logger should not be enabled")
	}
}
