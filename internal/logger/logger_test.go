package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		json  bool
		debug bool
	}{
		{name: "console info"},
		{name: "json debug", json: true, debug: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger, err := New(Options{JSON: tc.json, Debug: tc.debug})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := logger.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
				t.Fatalf("expected debug enabled=%v, got %v", tc.debug, got)
			}
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "matcher.log")

	logger, err := New(Options{JSON: true, File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("scored", zap.String(FieldCandidate, "Jane Roe"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 entry, got %d: %q", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not json: %v", err)
	}

	if entry["step"] != "scored" || entry["level"] != "info" || entry[FieldCandidate] != "Jane Roe" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestOptionsOutputPath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":             "stderr",
		"   ":          "stderr",
		"stdout":       "stderr",
		"stderr":       "stderr",
		" /tmp/m.log ": "/tmp/m.log",
	}

	for file, want := range cases {
		if got := (Options{File: file}).outputPath(); got != want {
			t.Fatalf("outputPath(%q) = %q, want %q", file, got, want)
		}
	}
}

func TestNewRejectsUnwritablePath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "matcher.log")

	if _, err := New(Options{File: path}); err == nil {
		t.Fatalf("expected error for path in a missing directory")
	}
}
