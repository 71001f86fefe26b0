// Package validator checks rendered sitemap documents against the sitemaps.org protocol.
package validator

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"sitemapgen/internal/sitemap"
)

// Protocol limits for a single sitemap file.
const (
	MaxEntries = 50000
	MaxBytes   = 50 * 1024 * 1024
)

// Document kinds.
const (
	KindURLSet = "urlset"
	KindIndex  = "sitemapindex"
)

// Validation errors.
var (
	ErrEmptyDocument    = errors.New("document has no root element")
	ErrUnknownRoot      = errors.New("root element is neither urlset nor sitemapindex")
	ErrWrongNamespace   = errors.New("root element has the wrong namespace")
	ErrMissingLoc       = errors.New("loc is required")
	ErrRelativeLoc      = errors.New("loc must be an absolute http(s) URL")
	ErrUnescapedLoc     = errors.New("loc contains unescaped whitespace")
	ErrInvalidLastMod   = errors.New("lastmod is not a W3C datetime")
	ErrInvalidFreq      = errors.New("changefreq is not a protocol value")
	ErrInvalidPriority  = errors.New("priority must be a number between 0.0 and 1.0")
	ErrTooManyEntries   = errors.New("sitemap exceeds 50000 entries")
	ErrDocumentTooLarge = errors.New("sitemap exceeds 50MB uncompressed")
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Err   error
	Field string
	Value string
	Entry int
}

func (e ValidationError) Error() string {
	if e.Entry == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("entry %d: %s: %v (%q)", e.Entry, e.Field, e.Err, e.Value)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Kind     string
	Errors   []ValidationError
	Warnings []string
	Locs     []string
	seen     map[string]struct{}
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	Entries        int
	ValidEntries   int
	InvalidEntries int
	Duplicates     int
	Bytes          int
}

// Validate parses data as a sitemap or sitemap index and checks every entry.
// Structural problems that prevent inspection are returned as an error.
func Validate(data []byte) (*ValidationResult, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root, err := rootElement(dec)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Kind:     root.Name.Local,
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []string{},
		Stats:    ValidationStats{Bytes: len(data)},
		seen:     make(map[string]struct{}),
	}

	if root.Name.Space != sitemap.Namespace {
		result.fail(ValidationError{Err: fmt.Errorf("%w: %q", ErrWrongNamespace, root.Name.Space)})
	}

	switch root.Name.Local {
	case KindURLSet:
		var set sitemap.URLSet
		if err := dec.DecodeElement(&set, &root); err != nil {
			return nil, fmt.Errorf("failed to decode urlset: %w", err)
		}

		for i, u := range set.URLs {
			result.check(i+1, u.Loc, u.LastMod, u.ChangeFreq, u.Priority)
		}
	case KindIndex:
		var idx sitemap.Index
		if err := dec.DecodeElement(&idx, &root); err != nil {
			return nil, fmt.Errorf("failed to decode sitemapindex: %w", err)
		}

		for i, ref := range idx.Sitemaps {
			result.check(i+1, ref.Loc, ref.LastMod, "", "")
		}
	default:
		return nil, fmt.Errorf("%w: <%s>", ErrUnknownRoot, root.Name.Local)
	}

	if result.Stats.Entries > MaxEntries {
		result.fail(ValidationError{Err: ErrTooManyEntries})
	}

	if result.Stats.Bytes > MaxBytes {
		result.fail(ValidationError{Err: ErrDocumentTooLarge})
	}

	if result.Stats.Duplicates > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d duplicate loc value(s)", result.Stats.Duplicates))
	}

	if result.Stats.Entries == 0 {
		result.Warnings = append(result.Warnings, "document has no entries")
	}

	return result, nil
}

// ValidateReader reads r fully and validates it.
func ValidateReader(r io.Reader) (*ValidationResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read sitemap: %w", err)
	}

	return Validate(data)
}

func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, ErrEmptyDocument
		}

		if err != nil {
			return xml.StartElement{}, fmt.Errorf("failed to parse XML: %w", err)
		}

		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func (r *ValidationResult) check(entry int, loc, lastmod, freq, priority string) {
	r.Stats.Entries++
	errs := entryErrors(entry, loc, lastmod, freq, priority)

	if len(errs) > 0 {
		r.Stats.InvalidEntries++
		for _, e := range errs {
			r.fail(e)
		}
	} else {
		r.Stats.ValidEntries++
	}

	if _, dup := r.seen[loc]; dup {
		r.Stats.Duplicates++
	}

	r.seen[loc] = struct{}{}
	r.Locs = append(r.Locs, loc)
}

func (r *ValidationResult) fail(e ValidationError) {
	r.IsValid = false
	r.Errors = append(r.Errors, e)
}

func entryErrors(entry int, loc, lastmod, freq, priority string) []ValidationError {
	var errs []ValidationError

	if loc == "" {
		errs = append(errs, ValidationError{Entry: entry, Field: "loc", Err: ErrMissingLoc})
	} else if u, err := url.Parse(loc); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{Entry: entry, Field: "loc", Value: loc, Err: ErrRelativeLoc})
	} else if strings.ContainsAny(strings.TrimSpace(loc), " \t\r\n") {
		errs = append(errs, ValidationError{Entry: entry, Field: "loc", Value: loc, Err: ErrUnescapedLoc})
	}

	if lastmod != "" {
		if _, err := sitemap.ParseDate(lastmod); err != nil {
			errs = append(errs, ValidationError{Entry: entry, Field: "lastmod", Value: lastmod, Err: ErrInvalidLastMod})
		}
	}

	if freq != "" && !sitemap.IsValidChangeFreq(freq) {
		errs = append(errs, ValidationError{Entry: entry, Field: "changefreq", Value: freq, Err: ErrInvalidFreq})
	}

	if priority != "" {
		p, err := strconv.ParseFloat(priority, 64)
		if err != nil || p < 0 || p > 1 {
			errs = append(errs, ValidationError{Entry: entry, Field: "priority", Value: priority, Err: ErrInvalidPriority})
		}
	}

	return errs
}
