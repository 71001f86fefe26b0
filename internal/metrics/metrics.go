// Package metrics exposes sitemap generation counters to Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sitemapgen/internal/sitemap"
)

const namespace = "sitemapgen"

// Ensure Collector implements sitemap.Recorder.
var _ sitemap.Recorder = (*Collector)(nil)

// Collector records generation runs on its own registry.
type Collector struct {
	registry      *prometheus.Registry
	fetched       prometheus.Counter
	fetchDuration prometheus.Histogram
	skipped       *prometheus.CounterVec
	urls          *prometheus.GaugeVec
	sitemaps      prometheus.Counter
}

// NewCollector creates a collector and registers its metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		fetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_fetched_total",
			Help:      "Documents returned by the CMS.",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of document fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_skipped_total",
			Help:      "Documents left out of a sitemap, by type and reason.",
		}, []string{"type", "reason"}),
		urls: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sitemap_urls",
			Help:      "URL entries in the most recently rendered sitemap file.",
		}, []string{"file"}),
		sitemaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sitemaps_rendered_total",
			Help:      "Sitemap files rendered.",
		}),
	}

	c.registry.MustRegister(c.fetched, c.fetchDuration, c.skipped, c.urls, c.sitemaps)

	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveFetch implements sitemap.Recorder.
func (c *Collector) ObserveFetch(count int, elapsed time.Duration) {
	c.fetched.Add(float64(count))
	c.fetchDuration.Observe(elapsed.Seconds())
}

// ObserveSkip implements sitemap.Recorder.
func (c *Collector) ObserveSkip(docType, reason string) {
	c.skipped.WithLabelValues(docType, reason).Inc()
}

// ObserveSitemap implements sitemap.Recorder.
func (c *Collector) ObserveSitemap(name string, urls int) {
	c.urls.WithLabelValues(name).Set(float64(urls))
	c.sitemaps.Inc()
}

// WriteTextfile writes the current metrics in the text exposition format,
// suitable for the node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}
