package exports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"time"
)

func encodeCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeJSON(t Table) ([]byte, error) {
	payload := struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
		Items []any  `json:"items"`
	}{Name: t.Name, Count: len(t.Records), Items: t.Records}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json export: %w", err)
	}
	return data, nil
}

var tableTemplate = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 9pt; color: #1f2933; }
h1 { font-size: 14pt; margin: 0 0 4px 0; }
p.meta { color: #616e7c; margin: 0 0 12px 0; }
table { width: 100%; border-collapse: collapse; }
th { background: #e4e7eb; text-align: left; padding: 4px 6px; }
td { border-bottom: 1px solid #e4e7eb; padding: 4px 6px; vertical-align: top; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<p class="meta">{{.Count}} rows, generated {{.GeneratedAt}}</p>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

func renderHTML(t Table, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := tableTemplate.Execute(&buf, struct {
		Name        string
		Count       int
		GeneratedAt string
		Headers     []string
		Rows        [][]string
	}{
		Name:        t.Name,
		Count:       len(t.Rows),
		GeneratedAt: now.UTC().Format("2006-01-02 15:04 MST"),
		Headers:     t.Headers,
		Rows:        t.Rows,
	})
	if err != nil {
		return nil, fmt.Errorf("render export html: %w", err)
	}
	return buf.Bytes(), nil
}
