// Package report renders run summaries as aligned markdown tables.
package report

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"sitemapgen/internal/sitemap"
	"sitemapgen/internal/validator"
)

const minColumnWidth = 3

// Status values shown in the last column.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusUnknown = "-"
)

// Entry is one row of a run summary.
type Entry struct {
	Name   string
	Status string
	URLs   int
	Bytes  int
}

// FromSplit builds one entry per rendered sitemap plus the index.
func FromSplit(res *sitemap.SplitResult, indexName string) []Entry {
	entries := make([]Entry, 0, len(res.Sitemaps)+1)
	for _, f := range res.Sitemaps {
		entries = append(entries, Entry{Name: f.Name, URLs: f.URLs, Bytes: len(f.XML), Status: StatusUnknown})
	}

	return append(entries, Entry{
		Name:   indexName,
		URLs:   len(res.Sitemaps),
		Bytes:  len(res.Index),
		Status: StatusUnknown,
	})
}

// FromValidation builds an entry from a validator result.
func FromValidation(name string, res *validator.ValidationResult) Entry {
	status := StatusOK
	if !res.IsValid {
		status = StatusInvalid
	}

	return Entry{Name: name, URLs: res.Stats.Entries, Bytes: res.Stats.Bytes, Status: status}
}

// Summary renders entries followed by a total row.
func Summary(entries []Entry) string {
	rows := [][]string{{"File", "URLs", "Bytes", "Status"}}

	var urls, size int

	for _, e := range entries {
		status := e.Status
		if status == "" {
			status = StatusUnknown
		}

		rows = append(rows, []string{e.Name, strconv.Itoa(e.URLs), strconv.Itoa(e.Bytes), status})
		urls += e.URLs
		size += e.Bytes
	}

	rows = append(rows, []string{"total", strconv.Itoa(urls), strconv.Itoa(size), ""})

	return strings.Join(FormatTable(rows), "\n") + "\n"
}

// FormatTable lays out rows as a markdown table. The first row is the header;
// a separator is inserted after it. Widths are measured in display cells.
func FormatTable(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}

	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	colWidths := make([]int, colCount)
	for i := range colWidths {
		colWidths[i] = minColumnWidth
	}

	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	result := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		result = append(result, formatRow(row, colWidths))

		if i == 0 {
			sep := make([]string, colCount)
			for j, w := range colWidths {
				sep[j] = strings.Repeat("-", w)
			}

			result = append(result, formatRow(sep, colWidths))
		}
	}

	return result
}

func formatRow(row []string, widths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, w := range widths {
		content := ""
		if j < len(row) {
			content = row[j]
		}

		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(content, w))
		sb.WriteString(" |")
	}

	return sb.String()
}
