package sanity

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"sitemapgen/internal/logger"
	"sitemapgen/internal/sitemap"
)

// documentsQueryTemplate selects published documents of the requested types.
// Drafts live under the "drafts." id prefix.
const documentsQueryTemplate = `*[_type in $types && !(_id in path("drafts.**"))]{
  _id,
  _type,
  "slug": slug.current,
  _updatedAt,
  publishedAt%s
}`

// GROQ attribute names that can be projected without quoting.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Ensure DocumentFetcher implements sitemap.Fetcher.
var _ sitemap.Fetcher = (*DocumentFetcher)(nil)

// DocumentFetcher loads sitemap documents through a query Client.
type DocumentFetcher struct {
	client      Client
	logger      *logger.Logger
	extraFields []string
}

// NewDocumentFetcher creates a fetcher. extraFields are projected in addition
// to the standard fields, typically the values of DateFieldPerType.
func NewDocumentFetcher(client Client, log *logger.Logger, extraFields ...string) *DocumentFetcher {
	if log == nil {
		log = logger.Discard()
	}

	return &DocumentFetcher{
		client:      client,
		logger:      log,
		extraFields: extraFields,
	}
}

// DocumentsQuery builds the projection query, adding extraFields that are
// valid identifiers and not already selected.
func DocumentsQuery(extraFields ...string) string {
	known := []string{sitemap.FieldID, sitemap.FieldType, sitemap.FieldSlug, sitemap.FieldUpdatedAt, sitemap.FieldPublishedAt}

	var extra []string

	for _, f := range extraFields {
		if !identifierRegex.MatchString(f) || slices.Contains(known, f) || slices.Contains(extra, f) {
			continue
		}

		extra = append(extra, f)
	}

	suffix := ""
	if len(extra) > 0 {
		suffix = ",\n  " + strings.Join(extra, ",\n  ")
	}

	return fmt.Sprintf(documentsQueryTemplate, suffix)
}

// Fetch runs the documents query for types.
func (f *DocumentFetcher) Fetch(ctx context.Context, types []string) ([]sitemap.Document, error) {
	if types == nil {
		types = []string{}
	}

	resp, err := f.client.Query(ctx, DocumentsQuery(f.extraFields...), map[string]any{"types": types})
	if err != nil {
		return nil, err
	}

	docs, err := DecodeResult[[]sitemap.Document](resp)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Decoded documents", "count", len(docs), "types", types)

	return docs, nil
}

// DateFields returns the distinct field names referenced by dateFieldPerType, sorted.
func DateFields(dateFieldPerType map[string]string) []string {
	fields := make([]string, 0, len(dateFieldPerType))
	for _, f := range dateFieldPerType {
		if f != "" && !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}

	slices.Sort(fields)

	return fields
}
