package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitemapgen/internal/sitemap"
)

var errNetwork = errors.New("network down")

// MockClient implements the Client interface for testing.
type MockClient struct {
	QueryFunc func(ctx context.Context, query string, params map[string]any) (*QueryResponse, error)
	queries   []string
}

func (m *MockClient) Query(ctx context.Context, query string, params map[string]any) (*QueryResponse, error) {
	m.queries = append(m.queries, query)

	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, query, params)
	}

	return &QueryResponse{Result: json.RawMessage(`[]`)}, nil
}

func TestDocumentsQuery(t *testing.T) {
	q := DocumentsQuery()
	assert.Contains(t, q, `*[_type in $types && !(_id in path("drafts.**"))]`)
	assert.Contains(t, q, `"slug": slug.current`)
	assert.Contains(t, q, "_updatedAt")
	assert.True(t, strings.HasSuffix(q, "publishedAt\n}"), q)

	q = DocumentsQuery("eventDate", "publishedAt", "eventDate", "bad-field", "")
	assert.Equal(t, 1, strings.Count(q, "eventDate"))
	assert.Equal(t, 1, strings.Count(q, "publishedAt"))
	assert.NotContains(t, q, "bad-field")
	assert.True(t, strings.HasSuffix(q, "publishedAt,\n  eventDate\n}"), q)
}

func TestDocumentFetcher_Fetch(t *testing.T) {
	mock := &MockClient{
		QueryFunc: func(_ context.Context, query string, params map[string]any) (*QueryResponse, error) {
			assert.Equal(t, []string{"page", "post"}, params["types"])
			assert.Contains(t, query, "eventDate")

			return &QueryResponse{Result: json.RawMessage(`[
				{"_id":"a","_type":"page","slug":"about","_updatedAt":"2024-01-01T00:00:00Z","publishedAt":null},
				{"_id":"b","_type":"post","slug":null,"_updatedAt":"2024-01-02T00:00:00Z","eventDate":"2025-01-01"}
			]`)}, nil
		},
	}

	f := NewDocumentFetcher(mock, nil, "eventDate")

	docs, err := f.Fetch(context.Background(), []string{"page", "post"})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, sitemap.Document{ID: "a", Type: "page", Slug: "about", UpdatedAt: "2024-01-01T00:00:00Z"}, docs[0])
	assert.Empty(t, docs[1].Slug)

	v, ok := docs[1].Field("eventDate")
	assert.True(t, ok)
	assert.Equal(t, "2025-01-01", v)
	assert.Len(t, mock.queries, 1)
}

func TestDocumentFetcher_NilTypesSentAsEmptyList(t *testing.T) {
	mock := &MockClient{
		QueryFunc: func(_ context.Context, _ string, params map[string]any) (*QueryResponse, error) {
			types, ok := params["types"].([]string)
			assert.True(t, ok)
			assert.NotNil(t, types)

			return &QueryResponse{Result: json.RawMessage(`[]`)}, nil
		},
	}

	docs, err := NewDocumentFetcher(mock, nil).Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentFetcher_Errors(t *testing.T) {
	failing := &MockClient{
		QueryFunc: func(context.Context, string, map[string]any) (*QueryResponse, error) {
			return nil, errNetwork
		},
	}

	_, err := NewDocumentFetcher(failing, nil).Fetch(context.Background(), []string{"page"})
	require.ErrorIs(t, err, errNetwork)

	malformed := &MockClient{
		QueryFunc: func(context.Context, string, map[string]any) (*QueryResponse, error) {
			return &QueryResponse{Result: json.RawMessage(`{"not":"a list"}`)}, nil
		},
	}

	_, err = NewDocumentFetcher(malformed, nil).Fetch(context.Background(), []string{"page"})
	require.Error(t, err)
}

func TestDocumentFetcher_ErrorsPropagateThroughGenerate(t *testing.T) {
	failing := &MockClient{
		QueryFunc: func(context.Context, string, map[string]any) (*QueryResponse, error) {
			return nil, errNetwork
		},
	}

	_, err := sitemap.Generate(context.Background(), NewDocumentFetcher(failing, nil), sitemap.Options{BaseURL: "https://x.test"})

	var fetchErr *sitemap.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, errNetwork)
}

func TestDateFields(t *testing.T) {
	got := DateFields(map[string]string{"post": "publishedAt", "event": "eventDate", "news": "publishedAt", "page": ""})
	assert.Equal(t, []string{"eventDate", "publishedAt"}, got)
	assert.Empty(t, DateFields(nil))
}
