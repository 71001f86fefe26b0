package sitemap

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"rfc3339 utc", "2024-01-01T00:00:00Z", "2024-01-01T00:00:00.000Z"},
		{"rfc3339 millis", "2024-01-01T10:20:30.456Z", "2024-01-01T10:20:30.456Z"},
		{"rfc3339 offset", "2024-01-01T02:00:00+02:00", "2024-01-01T00:00:00.000Z"},
		{"date only", "2025-01-01", "2025-01-01T00:00:00.000Z"},
		{"no zone", "2024-06-15T08:30:00", "2024-06-15T08:30:00.000Z"},
		{"no seconds", "2024-06-15T08:30", "2024-06-15T08:30:00.000Z"},
		{"space separated", "2024-06-15 08:30:00", "2024-06-15T08:30:00.000Z"},
		{"padded", "  2025-01-01  ", "2025-01-01T00:00:00.000Z"},
		{"epoch millis float", float64(1704067200000), "2024-01-01T00:00:00.000Z"},
		{"epoch millis int", 1704067200000, "2024-01-01T00:00:00.000Z"},
		{"json number", json.Number("1704067200000"), "2024-01-01T00:00:00.000Z"},
		{"time value", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-01-01T00:00:00.000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate(%v) error: %v", tt.input, err)
			}

			if s := FormatTimestamp(got); s != tt.want {
				t.Errorf("FormatTimestamp = %s, want %s", s, tt.want)
			}
		})
	}
}

func TestParseDate_Errors(t *testing.T) {
	inputs := []any{"yesterday", "", true, math.NaN(), map[string]any{}}

	for _, in := range inputs {
		if _, err := ParseDate(in); !errors.Is(err, ErrUnparseableDate) {
			t.Errorf("ParseDate(%v) error = %v, want ErrUnparseableDate", in, err)
		}
	}
}

func TestResolveLastmod_FallsBackToNow(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	opts := Normalize(Options{})

	if got := resolveLastmod(nil, false, now, opts); got != "2026-10-18T12:00:00.000Z" {
		t.Errorf("missing value = %s", got)
	}

	if got := resolveLastmod("not a date", true, now, opts); got != "2026-10-18T12:00:00.000Z" {
		t.Errorf("unparseable value = %s", got)
	}
}
