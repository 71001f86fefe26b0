package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitemapgen/internal/config"
	"sitemapgen/internal/logger"
	"sitemapgen/internal/metrics"
	"sitemapgen/internal/plugin"
	"sitemapgen/internal/report"
	"sitemapgen/internal/sanity"
	"sitemapgen/internal/sanity/sanitytest"
	"sitemapgen/internal/sitemap"
	"sitemapgen/internal/validator"
)

var renderTime = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

const configTemplate = `
sanity:
  api_host: %q
  dataset: production
  api_version: "2024-03-31"
sitemap:
  base_url: https://example.com
  include_types: [page, post, event]
  exclude_slugs: [legal]
  changefreq: weekly
  priority: 0.7
  split_by_type: %t
  date_field_per_type:
    post: publishedAt
    event: startsAt
  extra_fields: [title]
  url_templates:
    event: "{{.BaseURL}}/events/{{.Slug}}"
  manual_urls:
    - url: https://example.com/contact
      last_modified: "2024-01-15"
`

type pipeline struct {
	server    *sanitytest.Server
	plugin    *plugin.Plugin
	fetcher   *sanity.DocumentFetcher
	collector *metrics.Collector
}

func loadFixtureDocs(t *testing.T) []map[string]any {
	t.Helper()

	content, err := os.ReadFile(filepath.Join("..", "fixtures", "documents.json"))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	var docs []map[string]any
	require.NoError(t, json.Unmarshal(content, &docs))

	return docs
}

func newPipeline(t *testing.T, split bool) *pipeline {
	t.Helper()

	srv := sanitytest.NewServer(t, "", loadFixtureDocs(t)...)

	cfg, err := config.Parse(fmt.Appendf(nil, configTemplate, srv.URL, split))
	require.NoError(t, err)

	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	log := logger.Discard()

	client, err := sanity.NewHTTPClient(cfg.ClientConfig(), log)
	require.NoError(t, err)

	opts, err := cfg.SitemapOptions()
	require.NoError(t, err)

	collector := metrics.NewCollector()
	opts.Recorder = collector
	opts.Logger = log
	opts.Now = func() time.Time { return renderTime }

	p, err := plugin.Register(plugin.NewRegistry(), opts)
	require.NoError(t, err)

	return &pipeline{
		server:    srv,
		plugin:    p,
		fetcher:   sanity.NewDocumentFetcher(client, log, cfg.QueryFields()...),
		collector: collector,
	}
}

func mustValidate(t *testing.T, doc string) *validator.ValidationResult {
	t.Helper()

	res, err := validator.Validate([]byte(doc))
	require.NoError(t, err)
	require.True(t, res.IsValid, "validation errors: %v", res.Errors)

	return res
}

func TestSitemapFlow_Split(t *testing.T) {
	p := newPipeline(t, true)

	res, err := p.plugin.GenerateSplit(context.Background(), p.fetcher)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"sitemap-page.xml",
		"sitemap-post.xml",
		"sitemap-event.xml",
		"sitemap-manual.xml",
	}, res.Names())

	pages, _ := res.Lookup("sitemap-page.xml")
	assert.Equal(t, []string{"https://example.com/", "https://example.com/about"}, mustValidate(t, pages.XML).Locs)
	assert.Contains(t, pages.XML, "<lastmod>2024-05-20T12:30:00.250Z</lastmod>")
	assert.Contains(t, pages.XML, "<changefreq>weekly</changefreq>")
	assert.Contains(t, pages.XML, "<priority>0.7</priority>")

	posts, _ := res.Lookup("sitemap-post.xml")
	assert.Equal(t, []string{"https://example.com/blog/launch"}, mustValidate(t, posts.XML).Locs)
	assert.Contains(t, posts.XML, "<lastmod>2024-02-14T08:00:00.000Z</lastmod>")

	events, _ := res.Lookup("sitemap-event.xml")
	assert.Equal(t, []string{"https://example.com/events/summit-2024"}, mustValidate(t, events.XML).Locs)
	assert.Contains(t, events.XML, "<lastmod>2024-06-20T08:00:00.000Z</lastmod>")

	manual, _ := res.Lookup("sitemap-manual.xml")
	assert.Equal(t, []string{"https://example.com/contact"}, mustValidate(t, manual.XML).Locs)
	assert.Contains(t, manual.XML, "<lastmod>2024-01-15T00:00:00.000Z</lastmod>")

	index := mustValidate(t, res.Index)
	assert.Equal(t, validator.KindIndex, index.Kind)
	assert.Equal(t, []string{
		"https://example.com/sitemap-page.xml",
		"https://example.com/sitemap-post.xml",
		"https://example.com/sitemap-event.xml",
		"https://example.com/sitemap-manual.xml",
	}, index.Locs)
	assert.Equal(t, 4, strings.Count(res.Index, "<lastmod>2026-10-18T09:30:00.000Z</lastmod>"))

	summary := report.Summary(report.FromSplit(res, sitemap.SingleFileName))
	assert.Contains(t, summary, "| sitemap-event.xml  | 1    |")

	files, err := testutil.GatherAndCount(p.collector.Registry(), "sitemapgen_sitemap_urls")
	require.NoError(t, err)
	assert.Equal(t, 4, files)

	skipped, err := testutil.GatherAndCount(p.collector.Registry(), "sitemapgen_documents_skipped_total")
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
}

func TestSitemapFlow_Single(t *testing.T) {
	p := newPipeline(t, false)

	out, err := p.plugin.Generate(context.Background(), p.fetcher)
	require.NoError(t, err)

	res := mustValidate(t, out)
	assert.Equal(t, validator.KindURLSet, res.Kind)
	assert.Equal(t, []string{
		"https://example.com/",
		"https://example.com/about",
		"https://example.com/blog/launch",
		"https://example.com/events/summit-2024",
		"https://example.com/contact",
	}, res.Locs)

	queries := p.server.Queries()
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0].Query, "startsAt")
	assert.Contains(t, queries[0].Query, "title")
	assert.Equal(t, []any{"page", "post", "event"}, queries[0].Params["types"])
}
