// Package exports renders materialized views of leads and content to
// downloadable artifacts (CSV, JSON, PDF) and optionally archives them.
package exports

import (
	"iter"
	"strings"

	"leadscout_backend/platform/apperr"
)

// Format is an export target.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts the known format tags case-insensitively. Known but
// unsupported formats are returned too; Service.Export rejects them.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatPDF, FormatXLSX:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", apperr.BadRequest("unknown export format: " + s)
	}
}

// Column maps an item to one cell of the tabular formats.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Table is a fully materialized export payload. Records keep the original
// items for JSON; Rows hold the flattened cells for CSV and PDF.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
	Records []any
}

// Collect drains seq into a Table. The sequence is consumed exactly once, so
// every format renders the same rows in the same order.
func Collect[T any](name string, seq iter.Seq[T], columns []Column[T]) Table {
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
	}

	table := Table{Name: name, Headers: headers, Rows: [][]string{}, Records: []any{}}
	for item := range seq {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = col.Value(item)
		}
		table.Rows = append(table.Rows, row)
		table.Records = append(table.Records, item)
	}
	return table
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }
