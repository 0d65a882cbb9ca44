package exports

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"

	"github.com/google/uuid"
)

// PDFConverter turns an HTML document into PDF bytes.
type PDFConverter interface {
	ConvertHTML(ctx context.Context, indexHTML []byte) ([]byte, error)
}

// Store archives artifacts and hands out time-limited download links.
type Store interface {
	Put(ctx context.Context, folder, fileName, contentType string, data []byte) (string, error)
	DownloadURL(ctx context.Context, key string) (string, time.Time, error)
}

// Artifact is a rendered export. When it was archived, Key and URL are set.
type Artifact struct {
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Rows        int       `json:"rows"`
	Data        []byte    `json:"-"`
	Key         string    `json:"key,omitempty"`
	URL         string    `json:"url,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitzero"`
}

// Stored reports whether the artifact was archived.
func (a Artifact) Stored() bool { return a.URL != "" }

// Request selects the format and whether the result should be archived.
type Request struct {
	OrganizationID uuid.UUID
	Format         Format
	Store          bool
}

// Service renders tables to artifacts. PDF needs a converter and archiving
// needs a store; both are optional.
type Service struct {
	pdf   PDFConverter
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// New creates an export service. pdf and store may be nil.
func New(pdf PDFConverter, store Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{pdf: pdf, store: store, log: log, now: time.Now}
}

// Export encodes table in req.Format and archives it when req.Store is set.
func (s *Service) Export(ctx context.Context, req Request, table Table) (Artifact, error) {
	data, contentType, err := s.encode(ctx, req.Format, table)
	if err != nil {
		return Artifact{}, err
	}

	artifact := Artifact{
		FileName:    fileName(table.Name, req.Format, s.now()),
		ContentType: contentType,
		Rows:        table.Len(),
		Data:        data,
	}

	if !req.Store {
		return artifact, nil
	}
	if s.store == nil {
		return Artifact{}, apperr.Unavailable("export archiving is not configured")
	}

	folder := req.OrganizationID.String()
	key, err := s.store.Put(ctx, folder, artifact.FileName, contentType, data)
	if err != nil {
		return Artifact{}, apperr.Wrap(apperr.KindInternal, "failed to archive export", err).WithOp("exports.Export")
	}
	url, expiresAt, err := s.store.DownloadURL(ctx, key)
	if err != nil {
		return Artifact{}, apperr.Wrap(apperr.KindInternal, "failed to presign export", err).WithOp("exports.Export")
	}

	artifact.Key = key
	artifact.URL = url
	artifact.ExpiresAt = expiresAt
	s.log.Info("export archived", "organizationId", req.OrganizationID, "key", key, "rows", artifact.Rows)
	return artifact, nil
}

func (s *Service) encode(ctx context.Context, format Format, table Table) ([]byte, string, error) {
	switch format {
	case FormatCSV:
		data, err := encodeCSV(table)
		return data, "text/csv", err
	case FormatJSON:
		data, err := encodeJSON(table)
		return data, "application/json", err
	case FormatPDF:
		if s.pdf == nil {
			return nil, "", apperr.Unavailable("pdf export is not configured")
		}
		html, err := renderHTML(table, s.now())
		if err != nil {
			return nil, "", err
		}
		data, err := s.pdf.ConvertHTML(ctx, html)
		if err != nil {
			return nil, "", apperr.Wrap(apperr.KindUnavailable, "pdf conversion failed", err).WithOp("exports.Export")
		}
		return data, "application/pdf", nil
	case FormatXLSX:
		return nil, "", apperr.BadRequest("export format xlsx is not supported")
	default:
		return nil, "", apperr.BadRequest(fmt.Sprintf("unknown export format: %s", format))
	}
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

func fileName(name string, format Format, now time.Time) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "export"
	}
	return fmt.Sprintf("%s-%s.%s", base, now.UTC().Format("20060102-150405"), format)
}
