package sitemap

import (
	"context"
)

// Generate renders a single sitemap from the fetched documents and manual URLs.
// With SplitByType set it delegates to GenerateSplit and returns only the index.
func Generate(ctx context.Context, f Fetcher, opts Options) (string, error) {
	opts = Normalize(opts)

	if opts.SplitByType {
		res, err := GenerateSplit(ctx, f, opts)
		if err != nil {
			return "", err
		}

		return res.Index, nil
	}

	docs, err := fetchDocuments(ctx, f, opts)
	if err != nil {
		return "", err
	}

	now := opts.Now()

	entries, err := documentEntries(docs, opts, now)
	if err != nil {
		return "", err
	}

	entries = append(entries, manualEntries(opts, now)...)

	out, err := EncodeURLSet(entries)
	if err != nil {
		return "", err
	}

	opts.Recorder.ObserveSitemap(SingleFileName, len(entries))
	opts.Logger.Info("Rendered sitemap", "urls", len(entries), "documents", len(docs), "manual", len(opts.ManualURLs))

	out, err = opts.OnAfterRender(out)
	if err != nil {
		return "", &HookError{Hook: HookAfterRender, Err: err}
	}

	return out, nil
}
