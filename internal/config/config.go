// Package config provides configuration management for the sitemap generator.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sitemapgen/internal/sanity"
	"sitemapgen/internal/sitemap"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL     = errors.New("sitemap.base_url is required")
	ErrInvalidBaseURL     = errors.New("sitemap.base_url must be an absolute http(s) URL")
	ErrMissingProjectID   = errors.New("sanity.project_id is required")
	ErrMissingDataset     = errors.New("sanity.dataset is required")
	ErrInvalidTimeout     = errors.New("sanity.timeout_sec must be non-negative")
	ErrInvalidMaxResponse = errors.New("sanity.max_response_mb must be non-negative")
	ErrInvalidChangeFreq  = errors.New("sitemap.changefreq must be one of: always, hourly, daily, weekly, monthly, yearly, never")
	ErrInvalidPriority    = errors.New("sitemap.priority must be between 0.0 and 1.0")
	ErrInvalidManualURL   = errors.New("sitemap.manual_urls entries need an absolute url")
	ErrInvalidLastMod     = errors.New("sitemap.manual_urls last_modified is not a date")
	ErrInvalidURLTemplate = errors.New("sitemap.url_templates entry is invalid")
	ErrMissingOutputDir   = errors.New("output.dir is required")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat   = errors.New("logging.format must be 'text' or 'json'")
)

// Environment variables that override file values.
const (
	EnvToken     = "SANITY_API_TOKEN"
	EnvProjectID = "SANITY_PROJECT_ID"
	EnvDataset   = "SANITY_DATASET"
)

// Config represents the complete generator configuration.
type Config struct {
	Sanity  SanityConfig  `yaml:"sanity"`
	Sitemap SitemapConfig `yaml:"sitemap"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SanityConfig identifies the content dataset.
type SanityConfig struct {
	ProjectID  string `yaml:"project_id"`
	Dataset    string `yaml:"dataset"`
	APIVersion string `yaml:"api_version"`
	Token      string `yaml:"token,omitempty"`
	APIHost    string `yaml:"api_host,omitempty"`
	TimeoutSec int    `yaml:"timeout_sec"`
	UseCDN     bool   `yaml:"use_cdn"`
	// MaxResponseMB caps the query response size; zero uses the client default.
	MaxResponseMB int `yaml:"max_response_mb,omitempty"`
}

// SitemapConfig mirrors sitemap.Options in file form.
// URL builders are text/template strings keyed by document type.
type SitemapConfig struct {
	URLTemplates     map[string]string   `yaml:"url_templates,omitempty"`
	DateFieldPerType map[string]string   `yaml:"date_field_per_type,omitempty"`
	BaseURL          string              `yaml:"base_url"`
	ChangeFreq       string              `yaml:"changefreq,omitempty"`
	Stylesheet       string              `yaml:"stylesheet,omitempty"`
	IncludeTypes     []string            `yaml:"include_types,omitempty"`
	ExcludeSlugs     []string            `yaml:"exclude_slugs,omitempty"`
	ExtraFields      []string            `yaml:"extra_fields,omitempty"`
	ManualURLs       []sitemap.ManualURL `yaml:"manual_urls,omitempty"`
	Priority         float64             `yaml:"priority,omitempty"`
	SplitByType      bool                `yaml:"split_by_type"`
}

// OutputConfig defines where split runs write their files.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	IndexName string `yaml:"index_name"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a starter configuration.
func Default() *Config {
	return &Config{
		Sanity: SanityConfig{
			ProjectID:     "your-project-id",
			Dataset:       "production",
			APIVersion:    sanity.DefaultAPIVersion,
			TimeoutSec:    30,
			MaxResponseMB: sanity.DefaultMaxResponseBytes >> 20,
		},
		Sitemap: SitemapConfig{
			BaseURL:      "https://example.com",
			IncludeTypes: []string{"page", "post"},
			ChangeFreq:   sitemap.DefaultChangeFreq,
			Priority:     sitemap.DefaultPriority,
		},
		Output: OutputConfig{
			Dir:       "public",
			IndexName: sitemap.SingleFileName,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file, applies environment
// overrides and defaults, and validates the result.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.LookupEnv)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML without applying defaults or validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides credentials and dataset coordinates from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvToken); ok && v != "" {
		c.Sanity.Token = v
	}

	if v, ok := lookup(EnvProjectID); ok && v != "" {
		c.Sanity.ProjectID = v
	}

	if v, ok := lookup(EnvDataset); ok && v != "" {
		c.Sanity.Dataset = v
	}
}

// ApplyDefaults fills operational settings. Sitemap defaults are left to sitemap.Normalize.
func (c *Config) ApplyDefaults() {
	if c.Sanity.APIVersion == "" {
		c.Sanity.APIVersion = sanity.DefaultAPIVersion
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}

	if c.Output.IndexName == "" {
		c.Output.IndexName = sitemap.SingleFileName
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Sanity.ProjectID == "" && c.Sanity.APIHost == "" {
		return ErrMissingProjectID
	}

	if c.Sanity.Dataset == "" {
		return ErrMissingDataset
	}

	if c.Sanity.TimeoutSec < 0 {
		return ErrInvalidTimeout
	}

	if c.Sanity.MaxResponseMB < 0 {
		return ErrInvalidMaxResponse
	}

	if err := c.Sitemap.validate(); err != nil {
		return err
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

func (s *SitemapConfig) validate() error {
	if strings.TrimSpace(s.BaseURL) == "" {
		return ErrMissingBaseURL
	}

	if !isAbsoluteURL(s.BaseURL) {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, s.BaseURL)
	}

	if s.ChangeFreq != "" && !sitemap.IsValidChangeFreq(s.ChangeFreq) {
		return fmt.Errorf("%w: %q", ErrInvalidChangeFreq, s.ChangeFreq)
	}

	if s.Priority < 0 || s.Priority > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidPriority, s.Priority)
	}

	for i, m := range s.ManualURLs {
		if !isAbsoluteURL(m.URL) {
			return fmt.Errorf("%w: manual_urls[%d]", ErrInvalidManualURL, i)
		}

		if m.LastModified != "" {
			if _, err := sitemap.ParseDate(m.LastModified); err != nil {
				return fmt.Errorf("%w: manual_urls[%d]: %q", ErrInvalidLastMod, i, m.LastModified)
			}
		}
	}

	for docType, tmpl := range s.URLTemplates {
		if _, err := parseURLTemplate(docType, tmpl); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidURLTemplate, docType, err)
		}
	}

	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ClientConfig returns the Sanity client settings.
func (c *Config) ClientConfig() sanity.ClientConfig {
	return sanity.ClientConfig{
		ProjectID:  c.Sanity.ProjectID,
		Dataset:    c.Sanity.Dataset,
		APIVersion: c.Sanity.APIVersion,
		Token:      c.Sanity.Token,
		APIHost:    c.Sanity.APIHost,
		UseCDN:     c.Sanity.UseCDN,
		Timeout:    time.Duration(c.Sanity.TimeoutSec) * time.Second,

		MaxResponseBytes: int64(c.Sanity.MaxResponseMB) << 20,
	}
}

// QueryFields lists the document fields to project beyond the standard ones:
// every date field override plus extra_fields, sorted and distinct.
func (c *Config) QueryFields() []string {
	fields := sanity.DateFields(c.Sitemap.DateFieldPerType)
	for _, f := range c.Sitemap.ExtraFields {
		if f != "" && !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}

	slices.Sort(fields)

	return fields
}

// SitemapOptions converts the file configuration into generator options.
// A configured stylesheet becomes the after-render hook. The clock, logger
// and recorder are left for the caller to set.
func (c *Config) SitemapOptions() (sitemap.Options, error) {
	s := c.Sitemap

	builders, err := urlBuilders(s.BaseURL, s.URLTemplates)
	if err != nil {
		return sitemap.Options{}, err
	}

	opts := sitemap.Options{
		BaseURL:          s.BaseURL,
		IncludeTypes:     s.IncludeTypes,
		ExcludeSlugs:     s.ExcludeSlugs,
		ManualURLs:       s.ManualURLs,
		URLBuilders:      builders,
		DateFieldPerType: s.DateFieldPerType,
		ChangeFreq:       s.ChangeFreq,
		Priority:         s.Priority,
		SplitByType:      s.SplitByType,
	}

	if s.Stylesheet != "" {
		opts.OnAfterRender = sitemap.StylesheetHook(s.Stylesheet)
	}

	return opts, nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Project: %s, Dataset: %s, BaseURL: %s, Types: %v, Split: %t}",
		c.Sanity.ProjectID,
		c.Sanity.Dataset,
		c.Sitemap.BaseURL,
		c.Sitemap.IncludeTypes,
		c.Sitemap.SplitByType,
	)
}
