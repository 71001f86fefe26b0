package sitemap

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// File names used by the renderers.
const (
	SingleFileName = "sitemap.xml"
	ManualFileName = "sitemap-manual.xml"
)

var typeNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// TypeFileName is the file name of the sitemap holding documents of docType.
func TypeFileName(docType string) string {
	return "sitemap-" + docType + ".xml"
}

// IsSafeTypeName reports whether docType can be used as part of a file name
// and an index URL without escaping.
func IsSafeTypeName(docType string) bool {
	return typeNamePattern.MatchString(docType) && !strings.Contains(docType, "..")
}

// manualFileName returns ManualFileName, or a numbered variant when a
// document type already claimed it.
func manualFileName(taken map[string]bool) string {
	name := ManualFileName
	for i := 2; taken[name]; i++ {
		name = fmt.Sprintf("sitemap-manual-%d.xml", i)
	}

	return name
}

// File is one rendered sitemap of a split run.
type File struct {
	Name string
	XML  string
	URLs int
}

// SplitResult holds the index and the per-type sitemaps in index order.
type SplitResult struct {
	Index    string
	Sitemaps []File
}

// Lookup returns the sitemap stored under name.
func (r *SplitResult) Lookup(name string) (File, bool) {
	for _, f := range r.Sitemaps {
		if f.Name == name {
			return f, true
		}
	}

	return File{}, false
}

// Names returns the file names in index order.
func (r *SplitResult) Names() []string {
	names := make([]string, 0, len(r.Sitemaps))
	for _, f := range r.Sitemaps {
		names = append(names, f.Name)
	}

	return names
}

// GenerateSplit renders one sitemap per document type, one for manual URLs
// when any are configured, and an index referencing all of them.
// Types that are not safe file name parts are skipped with SkipInvalidType.
// When a "manual" document type exists the manual URL file is renamed to
// sitemap-manual-2.xml (or the next free number).
// OnAfterRender is applied to the index only.
func GenerateSplit(ctx context.Context, f Fetcher, opts Options) (*SplitResult, error) {
	opts = Normalize(opts)

	docs, err := fetchDocuments(ctx, f, opts)
	if err != nil {
		return nil, err
	}

	now := opts.Now()
	result := &SplitResult{}

	for _, group := range groupByType(docs) {
		if !IsSafeTypeName(group.docType) {
			for range group.docs {
				opts.Recorder.ObserveSkip(group.docType, SkipInvalidType)
			}

			opts.Logger.Warn("Skipping documents with unusable type name", "type", group.docType, "documents", len(group.docs))

			continue
		}

		entries, err := documentEntries(group.docs, opts, now)
		if err != nil {
			return nil, err
		}

		if err := result.add(TypeFileName(group.docType), entries, opts); err != nil {
			return nil, err
		}
	}

	if len(opts.ManualURLs) > 0 {
		if err := result.add(manualFileName(result.taken()), manualEntries(opts, now), opts); err != nil {
			return nil, err
		}
	}

	generated := FormatTimestamp(now)
	refs := make([]IndexRef, 0, len(result.Sitemaps))

	for _, file := range result.Sitemaps {
		refs = append(refs, IndexRef{Loc: JoinURL(opts.BaseURL, file.Name), LastMod: generated})
	}

	index, err := EncodeIndex(refs)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("Rendered sitemap index", "sitemaps", len(refs), "documents", len(docs))

	result.Index, err = opts.OnAfterRender(index)
	if err != nil {
		return nil, &HookError{Hook: HookAfterRender, Err: err}
	}

	return result, nil
}

func (r *SplitResult) taken() map[string]bool {
	names := make(map[string]bool, len(r.Sitemaps))
	for _, f := range r.Sitemaps {
		names[f.Name] = true
	}

	return names
}

func (r *SplitResult) add(name string, entries []URL, opts Options) error {
	out, err := EncodeURLSet(entries)
	if err != nil {
		return err
	}

	r.Sitemaps = append(r.Sitemaps, File{Name: name, XML: out, URLs: len(entries)})
	opts.Recorder.ObserveSitemap(name, len(entries))

	return nil
}

type typeGroup struct {
	docType string
	docs    []Document
}

// groupByType keeps types in first-seen order.
func groupByType(docs []Document) []typeGroup {
	var groups []typeGroup

	pos := make(map[string]int)

	for _, doc := range docs {
		i, ok := pos[doc.Type]
		if !ok {
			i = len(groups)
			pos[doc.Type] = i
			groups = append(groups, typeGroup{docType: doc.Type})
		}

		groups[i].docs = append(groups[i].docs, doc)
	}

	return groups
}
