package sitemap

import (
	"context"
	"time"
)

// Fetcher loads published (non-draft) documents whose type is in types.
type Fetcher interface {
	Fetch(ctx context.Context, types []string) ([]Document, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, types []string) ([]Document, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, types []string) ([]Document, error) {
	return f(ctx, types)
}

// Recorder observes generation runs. Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveFetch(count int, elapsed time.Duration)
	ObserveSkip(docType, reason string)
	ObserveSitemap(name string, urls int)
}

// Skip reasons passed to Recorder.ObserveSkip.
const (
	SkipExcluded    = "excluded_slug"
	SkipMissingSlug = "missing_slug"
	SkipInvalidType = "invalid_type"
)

type nopRecorder struct{}

func (nopRecorder) ObserveFetch(int, time.Duration) {}
func (nopRecorder) ObserveSkip(string, string)      {}
func (nopRecorder) ObserveSitemap(string, int)      {}

// fetchDocuments runs the single fetch of a generation request and the before-render hook.
func fetchDocuments(ctx context.Context, f Fetcher, opts Options) ([]Document, error) {
	start := opts.Now()

	docs, err := f.Fetch(ctx, opts.IncludeTypes)
	if err != nil {
		return nil, &FetchError{Types: opts.IncludeTypes, Err: err}
	}

	opts.Recorder.ObserveFetch(len(docs), opts.Now().Sub(start))
	opts.Logger.Debug("Fetched documents", "count", len(docs), "types", opts.IncludeTypes)

	docs, err = opts.OnBeforeRender(docs)
	if err != nil {
		return nil, &HookError{Hook: HookBeforeRender, Err: err}
	}

	return docs, nil
}
