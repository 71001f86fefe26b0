package sitemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 UTC form used for every <lastmod>.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ErrUnparseableDate is returned when a date value matches no known layout.
var ErrUnparseableDate = errors.New("unparseable date")

// Layouts tried in order. Zone-less values are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.DateTime,
	time.DateOnly,
}

// FormatTimestamp renders t as an ISO-8601 UTC timestamp with milliseconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseDate reads a date value coming from a document field or a manual URL.
// Strings are matched against RFC 3339 and the common shortened forms;
// numbers are epoch milliseconds.
func ParseDate(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		return parseDateString(val)
	case float64:
		return fromMillis(val)
	case int64:
		return time.UnixMilli(val).UTC(), nil
	case int:
		return time.UnixMilli(int64(val)).UTC(), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, val.String())
		}

		return fromMillis(f)
	}

	return time.Time{}, fmt.Errorf("%w: unsupported value %T", ErrUnparseableDate, v)
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, s)
}

func fromMillis(ms float64) (time.Time, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnparseableDate, ms)
	}

	return time.UnixMilli(int64(ms)).UTC(), nil
}

// resolveLastmod normalizes v, falling back to now when v is missing or unparseable.
func resolveLastmod(v any, ok bool, now time.Time, opts Options, attrs ...any) string {
	if !ok {
		return FormatTimestamp(now)
	}

	t, err := ParseDate(v)
	if err != nil {
		opts.Logger.Warn("Falling back to render time for lastmod", append(attrs, "error", err)...)
		return FormatTimestamp(now)
	}

	return FormatTimestamp(t)
}
