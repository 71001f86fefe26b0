package config

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"sitemapgen/internal/sitemap"
)

// URLTemplateData is the value URL templates execute against.
type URLTemplateData struct {
	Fields      map[string]any
	BaseURL     string
	Type        string
	Slug        string
	ID          string
	UpdatedAt   string
	PublishedAt string
}

var templateFuncs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"trimSlash":  func(s string) string { return strings.Trim(s, "/") },
	"lower":      strings.ToLower,
}

func parseURLTemplate(docType, text string) (*template.Template, error) {
	return template.New(docType).
		Funcs(templateFuncs).
		Option("missingkey=error").
		Parse(text)
}

// urlBuilders compiles one URLBuilder per configured document type.
func urlBuilders(baseURL string, templates map[string]string) (map[string]sitemap.URLBuilder, error) {
	if len(templates) == 0 {
		return nil, nil
	}

	base := strings.TrimRight(baseURL, "/")
	builders := make(map[string]sitemap.URLBuilder, len(templates))

	for docType, text := range templates {
		tmpl, err := parseURLTemplate(docType, text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidURLTemplate, docType, err)
		}

		builders[docType] = templateBuilder(tmpl, base)
	}

	return builders, nil
}

func templateBuilder(tmpl *template.Template, baseURL string) sitemap.URLBuilder {
	return func(doc sitemap.Document) (string, error) {
		data := URLTemplateData{
			Fields:      doc.Extra,
			BaseURL:     baseURL,
			Type:        doc.Type,
			Slug:        doc.Slug,
			ID:          doc.ID,
			UpdatedAt:   doc.UpdatedAt,
			PublishedAt: doc.PublishedAt,
		}

		if data.Fields == nil {
			data.Fields = map[string]any{}
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("execute url template %s: %w", tmpl.Name(), err)
		}

		return strings.TrimSpace(buf.String()), nil
	}
}
