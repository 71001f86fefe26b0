// Package sanitytest provides an in-process fake of the Sanity query API.
package sanitytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"sitemapgen/internal/sanity"
)

// Server answers document queries from a fixed set of raw documents.
// Documents are filtered by the "types" parameter and draft ids are hidden.
type Server struct {
	*httptest.Server

	docs    []map[string]any
	queries []sanity.QueryRequest
	mu      sync.Mutex
	token   string
}

// NewServer starts a fake serving docs. When token is non-empty, requests
// without a matching bearer token are rejected with 401.
func NewServer(t *testing.T, token string, docs ...map[string]any) *Server {
	t.Helper()

	s := &Server{docs: docs, token: token}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// Queries returns the requests received so far.
func (s *Server) Queries() []sanity.QueryRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.queries)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"Session not found"}`))

		return
	}

	var req sanity.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"queryParseError","description":"missing query"}}`))

		return
	}

	s.mu.Lock()
	s.queries = append(s.queries, req)
	s.mu.Unlock()

	types := requestedTypes(req.Params)
	result := make([]map[string]any, 0, len(s.docs))

	for _, doc := range s.docs {
		id, _ := doc["_id"].(string)
		docType, _ := doc["_type"].(string)

		if strings.HasPrefix(id, "drafts.") || !slices.Contains(types, docType) {
			continue
		}

		result = append(result, doc)
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"ms": 1, "result": result})
}

func requestedTypes(params map[string]any) []string {
	raw, _ := params["types"].([]any)

	types := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			types = append(types, s)
		}
	}

	return types
}
