// Package plugin registers sitemap generation as a named capability with a host application.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"sitemapgen/internal/sitemap"
)

// Name identifies the sitemap capability.
const Name = "sanity-plugin-sitemap-pro"

// ErrAlreadyRegistered is returned when a host already holds a plugin with the same name.
var ErrAlreadyRegistered = errors.New("plugin already registered")

// Plugin is a configured sitemap capability.
type Plugin struct {
	Name    string
	options sitemap.Options
}

// New validates opts and returns the plugin descriptor.
// A missing base URL yields a *sitemap.ConfigurationError.
func New(opts sitemap.Options) (*Plugin, error) {
	if err := sitemap.ValidateBaseURL(opts); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	return &Plugin{Name: Name, options: opts}, nil
}

// Options returns the normalized options the plugin generates with.
func (p *Plugin) Options() sitemap.Options {
	return sitemap.Normalize(p.options)
}

// Generate renders a sitemap (or the index when SplitByType is set).
func (p *Plugin) Generate(ctx context.Context, f sitemap.Fetcher) (string, error) {
	return sitemap.Generate(ctx, f, p.options)
}

// GenerateSplit renders per-type sitemaps and their index.
func (p *Plugin) GenerateSplit(ctx context.Context, f sitemap.Fetcher) (*sitemap.SplitResult, error) {
	return sitemap.GenerateSplit(ctx, f, p.options)
}

// Host accepts plugin registrations.
type Host interface {
	Register(p *Plugin) error
}

// Register validates opts and registers the resulting plugin with host.
func Register(host Host, opts sitemap.Options) (*Plugin, error) {
	p, err := New(opts)
	if err != nil {
		return nil, err
	}

	if err := host.Register(p); err != nil {
		return nil, fmt.Errorf("register %s: %w", p.Name, err)
	}

	return p, nil
}

// Registry is an in-memory Host.
type Registry struct {
	plugins map[string]*Plugin
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]*Plugin)}
}

// Register implements Host.
func (r *Registry) Register(p *Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[p.Name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, p.Name)
	}

	r.plugins[p.Name] = p

	return nil
}

// Get returns the plugin registered under name.
func (r *Registry) Get(name string) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]

	return p, ok
}
