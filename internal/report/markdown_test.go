package report

import (
	"strings"
	"testing"

	"sitemapgen/internal/sitemap"
	"sitemapgen/internal/validator"
)

func TestFormatTable(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		expected string
	}{
		{
			name: "Basic table",
			rows: [][]string{{"Header 1", "Header 2"}, {"val 1", "val 2"}},
			expected: `
| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |
`,
		},
		{
			name: "Minimum width",
			rows: [][]string{{"H1", "H2"}, {"v1", "v2"}},
			expected: `
| H1  | H2  |
| --- | --- |
| v1  | v2  |
`,
		},
		{
			name: "Ragged rows",
			rows: [][]string{{"A", "B", "C"}, {"x"}},
			expected: `
| A   | B   | C   |
| --- | --- | --- |
| x   |     |     |
`,
		},
		{
			// 新(2) 聞(2) = 4 cells for 2 runes.
			name: "Wide characters",
			rows: [][]string{{"File", "URLs"}, {"sitemap-新聞.xml", "3"}, {"sitemap-page.xml", "10"}},
			expected: `
| File             | URLs |
| ---------------- | ---- |
| sitemap-新聞.xml | 3    |
| sitemap-page.xml | 10   |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(FormatTable(tt.rows), "\n")
			if got != strings.TrimSpace(tt.expected) {
				t.Errorf("FormatTable() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}
}

func TestFormatTable_Empty(t *testing.T) {
	if got := FormatTable(nil); got != nil {
		t.Errorf("FormatTable(nil) = %v, want nil", got)
	}
}

func TestSummary(t *testing.T) {
	res := &sitemap.SplitResult{
		Index: "0123456789",
		Sitemaps: []sitemap.File{
			{Name: "sitemap-page.xml", XML: "abcd", URLs: 2},
			{Name: "sitemap-post.xml", XML: "ab", URLs: 1},
		},
	}

	got := Summary(FromSplit(res, sitemap.SingleFileName))
	expected := `| File             | URLs | Bytes | Status |
| ---------------- | ---- | ----- | ------ |
| sitemap-page.xml | 2    | 4     | -      |
| sitemap-post.xml | 1    | 2     | -      |
| sitemap.xml      | 2    | 10    | -      |
| total            | 5    | 16    |        |
`

	if got != expected {
		t.Errorf("Summary() = \n%v\nwant \n%v", got, expected)
	}
}

func TestFromValidation(t *testing.T) {
	res := &validator.ValidationResult{IsValid: false, Stats: validator.ValidationStats{Entries: 4, Bytes: 120}}

	e := FromValidation("sitemap.xml", res)
	if e.Status != StatusInvalid || e.URLs != 4 || e.Bytes != 120 {
		t.Errorf("FromValidation() = %+v", e)
	}

	res.IsValid = true
	if FromValidation("sitemap.xml", res).Status != StatusOK {
		t.Error("Expected ok status for valid result")
	}
}
