package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_TextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", FormatText)

	log.Info("hidden")
	log.Warn("shown", "slug", "a")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}

	if !strings.Contains(out, "shown") || !strings.Contains(out, "slug=a") {
		t.Errorf("expected warn record with attribute, got %q", out)
	}
}

func TestNew_JSONWithAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", FormatJSON).With("run_id", "r1")

	log.Info("generated", "urls", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}

	if rec["run_id"] != "r1" {
		t.Errorf("run_id = %v, want r1", rec["run_id"])
	}

	if rec["urls"] != float64(3) {
		t.Errorf("urls = %v, want 3", rec["urls"])
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "error", FormatText)

	log.Debug("before")
	log.SetLevel("debug")
	log.Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Errorf("unexpected output after SetLevel: %q", out)
	}
}
