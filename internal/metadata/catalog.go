package metadata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

// Catalog holds per-number metadata published alongside the documents,
// chiefly effective dates that never appear in the text itself.
type Catalog map[string]doctree.DocumentMetadata

// Header aliases accepted in catalog files.
var catalogColumns = map[string]string{
	"number":         "number",
	"số hiệu":        "number",
	"issue_date":     "issue_date",
	"ngày ban hành":  "issue_date",
	"effective_date": "effective_date",
	"ngày hiệu lực":  "effective_date",
	"title":          "title",
	"tên văn bản":    "title",
	"type":           "type",
	"loại văn bản":   "type",
}

// LoadCatalog reads a CSV whose first row names the columns. Rows without a
// number are skipped. Dates may be ISO or dd/mm/yyyy.
func LoadCatalog(r io.Reader) (Catalog, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse catalog csv: %w", err)
	}

	cat := Catalog{}
	if len(records) == 0 {
		return cat, nil
	}

	// First row is headers.
	cols := make([]string, len(records[0]))
	for i, h := range records[0] {
		cols[i] = catalogColumns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))]
	}

	for _, row := range records[1:] {
		var m doctree.DocumentMetadata
		for j, cell := range row {
			if j >= len(cols) {
				break
			}
			cell = strings.TrimSpace(cell)
			switch cols[j] {
			case "number":
				m.Number = cell
			case "issue_date":
				m.IssueDate = normalizeDate(cell)
			case "effective_date":
				m.EffectiveDate = normalizeDate(cell)
			case "title":
				m.Title = cell
			case "type":
				m.Type = doctree.ParseDocumentType(cell)
			}
		}
		if m.Number != "" {
			cat[m.Number] = m
		}
	}
	return cat, nil
}

// Enrich fills empty fields of meta from the catalog entry for its number.
func (c Catalog) Enrich(meta doctree.DocumentMetadata) doctree.DocumentMetadata {
	entry, ok := c[meta.Number]
	if !ok {
		return meta
	}
	return meta.Merge(entry)
}

// normalizeDate converts dd/mm/yyyy or dd-mm-yyyy to YYYY-MM-DD. Anything
// else is returned unchanged.
func normalizeDate(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' || r == '.' })
	if len(parts) != 3 || len(parts[2]) != 4 {
		return s
	}
	if d, ok := ParseDate("ngày " + parts[0] + " tháng " + parts[1] + " năm " + parts[2]); ok {
		return d
	}
	return s
}
