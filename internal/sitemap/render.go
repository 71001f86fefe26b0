package sitemap

import (
	"encoding/xml"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Namespace is the sitemaps.org 0.9 schema namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URLSet is the root element of a sitemap.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is one <url> entry. Field order is the element order.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Index is the root element of a sitemap index.
type Index struct {
	XMLName  xml.Name   `xml:"sitemapindex"`
	Xmlns    string     `xml:"xmlns,attr"`
	Sitemaps []IndexRef `xml:"sitemap"`
}

// IndexRef is one <sitemap> entry of an index.
type IndexRef struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// FormatPriority clamps p to [0,1] and renders the shortest decimal literal.
func FormatPriority(p float64) string {
	switch {
	case math.IsNaN(p):
		p = DefaultPriority
	case p < 0:
		p = 0
	case p > 1:
		p = 1
	}

	return strconv.FormatFloat(p, 'f', -1, 64)
}

// JoinURL appends path to base with exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// EscapeSlug percent-encodes each path segment of slug. Segments that are
// already encoded are decoded first so they are not encoded twice.
func EscapeSlug(slug string) string {
	segments := strings.Split(slug, "/")
	for i, seg := range segments {
		if raw, err := url.PathUnescape(seg); err == nil {
			seg = raw
		}

		segments[i] = url.PathEscape(seg)
	}

	return strings.Join(segments, "/")
}

// documentEntries filters excluded slugs and turns documents into <url> entries.
func documentEntries(docs []Document, opts Options, now time.Time) ([]URL, error) {
	entries := make([]URL, 0, len(docs))
	priority := FormatPriority(opts.Priority)

	for _, doc := range docs {
		if slices.Contains(opts.ExcludeSlugs, doc.Slug) {
			opts.Recorder.ObserveSkip(doc.Type, SkipExcluded)
			continue
		}

		loc, ok, err := resolveLoc(doc, opts)
		if err != nil {
			return nil, err
		}

		if !ok {
			opts.Recorder.ObserveSkip(doc.Type, SkipMissingSlug)
			opts.Logger.Warn("Skipping document without slug or URL builder", "type", doc.Type, "id", doc.ID)

			continue
		}

		field := FieldUpdatedAt
		if f := opts.DateFieldPerType[doc.Type]; f != "" {
			field = f
		}

		v, found := doc.Field(field)
		if !found && field != FieldUpdatedAt {
			v, found = doc.Field(FieldUpdatedAt)
		}

		entries = append(entries, URL{
			Loc:        loc,
			LastMod:    resolveLastmod(v, found, now, opts, "type", doc.Type, "slug", doc.Slug, "field", field),
			ChangeFreq: opts.ChangeFreq,
			Priority:   priority,
		})
	}

	return entries, nil
}

// resolveLoc reports false when the document has neither a builder nor a slug.
func resolveLoc(doc Document, opts Options) (string, bool, error) {
	if build, ok := opts.URLBuilders[doc.Type]; ok && build != nil {
		loc, err := build(doc)
		if err != nil {
			return "", false, &HookError{Hook: HookURLBuilder, Type: doc.Type, Err: err}
		}

		return loc, true, nil
	}

	if doc.Slug == "" {
		return "", false, nil
	}

	return JoinURL(opts.BaseURL, EscapeSlug(doc.Slug)), true, nil
}

func manualEntries(opts Options, now time.Time) []URL {
	entries := make([]URL, 0, len(opts.ManualURLs))
	priority := FormatPriority(opts.Priority)

	for _, m := range opts.ManualURLs {
		entries = append(entries, URL{
			Loc:        m.URL,
			LastMod:    resolveLastmod(m.LastModified, m.LastModified != "", now, opts, "url", m.URL),
			ChangeFreq: opts.ChangeFreq,
			Priority:   priority,
		})
	}

	return entries
}

// EncodeURLSet renders entries as a complete sitemap document.
func EncodeURLSet(entries []URL) (string, error) {
	return encode(URLSet{Xmlns: Namespace, URLs: entries})
}

// EncodeIndex renders refs as a complete sitemap index document.
func EncodeIndex(refs []IndexRef) (string, error) {
	return encode(Index{Xmlns: Namespace, Sitemaps: refs})
}

func encode(v any) (string, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode sitemap XML: %w", err)
	}

	return xml.Header + string(body) + "\n", nil
}

// StylesheetHook returns an AfterRenderFunc that links an XSL stylesheet
// right after the XML declaration.
func StylesheetHook(href string) AfterRenderFunc {
	var escaped strings.Builder
	_ = xml.EscapeText(&escaped, []byte(href))
	pi := `<?xml-stylesheet type="text/xsl" href="` + escaped.String() + `"?>` + "\n"

	return func(doc string) (string, error) {
		if !strings.HasPrefix(doc, xml.Header) {
			return pi + doc, nil
		}

		return xml.Header + pi + strings.TrimPrefix(doc, xml.Header), nil
	}
}
