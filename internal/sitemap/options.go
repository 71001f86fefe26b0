// Package sitemap renders sitemaps.org XML from CMS documents.
//
// Generate produces a single <urlset>; GenerateSplit produces one <urlset>
// per document type plus a <sitemapindex> referencing them.
package sitemap

import (
	"maps"
	"slices"
	"time"

	"sitemapgen/internal/logger"
)

// Defaults applied by Normalize.
const (
	DefaultChangeFreq = "monthly"
	DefaultPriority   = 0.5
)

// DefaultIncludeTypes are fetched when no types are configured.
var DefaultIncludeTypes = []string{"page", "post"}

// ChangeFreqs lists the values the sitemaps.org protocol allows for <changefreq>.
var ChangeFreqs = []string{"always", "hourly", "daily", "weekly", "monthly", "yearly", "never"}

// URLBuilder produces the absolute URL of a document.
type URLBuilder func(doc Document) (string, error)

// BeforeRenderFunc filters or transforms fetched documents before rendering.
type BeforeRenderFunc func(docs []Document) ([]Document, error)

// AfterRenderFunc post-processes the final XML.
type AfterRenderFunc func(xml string) (string, error)

// ManualURL is a URL listed in the sitemap independently of fetched documents.
type ManualURL struct {
	URL          string `yaml:"url" json:"url"`
	LastModified string `yaml:"last_modified,omitempty" json:"lastModified,omitempty"`
}

// Options configures a sitemap generation run.
type Options struct {
	Recorder         Recorder
	URLBuilders      map[string]URLBuilder
	DateFieldPerType map[string]string
	OnBeforeRender   BeforeRenderFunc
	OnAfterRender    AfterRenderFunc
	Now              func() time.Time
	Logger           *logger.Logger
	BaseURL          string
	ChangeFreq       string
	IncludeTypes     []string
	ExcludeSlugs     []string
	ManualURLs       []ManualURL
	Priority         float64
	SplitByType      bool
}

// Normalize returns a copy of opts with every optional field defaulted.
// BaseURL is passed through untouched; Normalize never fails.
// A nil IncludeTypes gets the defaults while an empty, non-nil slice stays empty.
func Normalize(opts Options) Options {
	out := opts

	if opts.IncludeTypes == nil {
		out.IncludeTypes = slices.Clone(DefaultIncludeTypes)
	} else {
		out.IncludeTypes = slices.Clone(opts.IncludeTypes)
	}

	out.ExcludeSlugs = cloneOrEmpty(opts.ExcludeSlugs)
	out.ManualURLs = cloneOrEmpty(opts.ManualURLs)

	out.URLBuilders = make(map[string]URLBuilder, len(opts.URLBuilders))
	maps.Copy(out.URLBuilders, opts.URLBuilders)

	out.DateFieldPerType = make(map[string]string, len(opts.DateFieldPerType))
	maps.Copy(out.DateFieldPerType, opts.DateFieldPerType)

	if out.ChangeFreq == "" {
		out.ChangeFreq = DefaultChangeFreq
	}

	if out.Priority == 0 {
		out.Priority = DefaultPriority
	}

	if out.OnBeforeRender == nil {
		out.OnBeforeRender = func(docs []Document) ([]Document, error) { return docs, nil }
	}

	if out.OnAfterRender == nil {
		out.OnAfterRender = func(xml string) (string, error) { return xml, nil }
	}

	if out.Now == nil {
		out.Now = time.Now
	}

	if out.Logger == nil {
		out.Logger = logger.Discard()
	}

	if out.Recorder == nil {
		out.Recorder = nopRecorder{}
	}

	return out
}

func cloneOrEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}

	return slices.Clone(in)
}

// IsValidChangeFreq reports whether v is a sitemaps.org changefreq value.
func IsValidChangeFreq(v string) bool {
	return slices.Contains(ChangeFreqs, v)
}
