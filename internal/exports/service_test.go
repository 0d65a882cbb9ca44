package exports

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"leadscout_backend/platform/apperr"

	"github.com/google/uuid"
)

type row struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

var rowColumns = []Column[row]{
	{Header: "Name", Value: func(r row) string { return r.Name }},
	{Header: "Score", Value: func(r row) string { return strconv.FormatFloat(r.Score, 'f', -1, 64) }},
}

func sampleTable() Table {
	rows := []row{{Name: "Ada, Ltd", Score: 7.7}, {Name: "Grace", Score: 3}}
	return Collect("Hot leads", slices.Values(rows), rowColumns)
}

type memStore struct {
	puts map[string][]byte
	fail bool
}

func (m *memStore) Put(_ context.Context, folder, fileName, _ string, data []byte) (string, error) {
	if m.fail {
		return "", errors.New("bucket unavailable")
	}
	key := folder + "/" + fileName
	if m.puts == nil {
		m.puts = make(map[string][]byte)
	}
	m.puts[key] = data
	return key, nil
}

func (m *memStore) DownloadURL(_ context.Context, key string) (string, time.Time, error) {
	return "https://storage.test/" + key, time.Date(2026, 1, 1, 0, 15, 0, 0, time.UTC), nil
}

func newTestService(pdf PDFConverter, store Store) *Service {
	svc := New(pdf, store, nil)
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestCollectMaterializesInOrder(t *testing.T) {
	table := sampleTable()
	if table.Len() != 2 || len(table.Records) != 2 {
		t.Fatalf("expected 2 rows and records, got %d/%d", table.Len(), len(table.Records))
	}
	if table.Rows[0][0] != "Ada, Ltd" || table.Rows[1][1] != "3" {
		t.Fatalf("unexpected rows: %v", table.Rows)
	}
}

func TestExportCSV(t *testing.T) {
	svc := newTestService(nil, nil)
	art, err := svc.Export(context.Background(), Request{Format: FormatCSV}, sampleTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.FileName != "hot-leads-20260101-000000.csv" || art.ContentType != "text/csv" {
		t.Fatalf("unexpected artifact: %s %s", art.FileName, art.ContentType)
	}

	records, err := csv.NewReader(strings.NewReader(string(art.Data))).ReadAll()
	if err != nil {
		t.Fatalf("artifact is not valid csv: %v", err)
	}
	want := [][]string{{"Name", "Score"}, {"Ada, Ltd", "7.7"}, {"Grace", "3"}}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if !slices.Equal(records[i], want[i]) {
			t.Fatalf("record %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestExportJSONKeepsRecords(t *testing.T) {
	svc := newTestService(nil, nil)
	art, err := svc.Export(context.Background(), Request{Format: FormatJSON}, sampleTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Count int   `json:"count"`
		Items []row `json:"items"`
	}
	if err := json.Unmarshal(art.Data, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Count != 2 || payload.Items[0].Score != 7.7 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestExportRejectsUnsupportedAndUnconfigured(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.Export(context.Background(), Request{Format: FormatXLSX}, sampleTable())
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("xlsx: expected bad request, got %v", err)
	}

	_, err = svc.Export(context.Background(), Request{Format: FormatPDF}, sampleTable())
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("pdf without converter: expected unavailable, got %v", err)
	}

	_, err = svc.Export(context.Background(), Request{Format: FormatCSV, Store: true}, sampleTable())
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("store without backend: expected unavailable, got %v", err)
	}
}

func TestExportPDFThroughGotenberg(t *testing.T) {
	var gotHTML string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/chromium/convert/html" {
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "u" || pass != "p" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		file, _, err := r.FormFile("files")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		gotHTML = string(body)
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	svc := newTestService(NewGotenbergClient(srv.URL, "u", "p"), nil)
	art, err := svc.Export(context.Background(), Request{Format: FormatPDF}, sampleTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(art.Data) != "%PDF-1.7" || art.ContentType != "application/pdf" {
		t.Fatalf("unexpected artifact: %q %s", art.Data, art.ContentType)
	}
	if !strings.Contains(gotHTML, "<td>Ada, Ltd</td>") || !strings.Contains(gotHTML, "2 rows") {
		t.Fatalf("html table missing rows: %s", gotHTML)
	}
}

func TestExportStoreReturnsPresignedURL(t *testing.T) {
	store := &memStore{}
	orgID := uuid.New()
	svc := newTestService(nil, store)

	art, err := svc.Export(context.Background(), Request{OrganizationID: orgID, Format: FormatCSV, Store: true}, sampleTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantKey := orgID.String() + "/hot-leads-20260101-000000.csv"
	if !art.Stored() || art.Key != wantKey || art.URL != "https://storage.test/"+wantKey {
		t.Fatalf("unexpected artifact: %+v", art)
	}
	if _, ok := store.puts[wantKey]; !ok {
		t.Fatalf("artifact was not uploaded")
	}

	store.fail = true
	if _, err := svc.Export(context.Background(), Request{OrganizationID: orgID, Format: FormatCSV, Store: true}, sampleTable()); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error on upload failure, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PDF "); err != nil || f != FormatPDF {
		t.Fatalf("ParseFormat(PDF) = %q, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatCSV {
		t.Fatalf("empty format should default to csv, got %q, %v", f, err)
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
