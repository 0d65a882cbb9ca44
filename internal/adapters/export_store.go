package adapters

import (
	"bytes"
	"context"
	"path"
	"time"

	"leadscout_backend/internal/adapters/storage"
	"leadscout_backend/internal/exports"

	"github.com/google/uuid"
)

// exportLinkTTL bounds how long an archived export stays downloadable by link.
const exportLinkTTL = 15 * time.Minute

// ExportStore implements exports.Store on object storage. Archives land under
// <folder>/<yyyy>/<mm>/<dd>/<id>/<fileName>, so repeated exports never collide
// and downloads keep the original file name.
type ExportStore struct {
	objects storage.ObjectStore
	bucket  string
	now     func() time.Time
}

func NewExportStore(objects storage.ObjectStore, bucket string) *ExportStore {
	return &ExportStore{objects: objects, bucket: bucket, now: time.Now}
}

func (a *ExportStore) Put(ctx context.Context, folder, fileName, contentType string, data []byte) (string, error) {
	key := path.Join(folder, a.now().UTC().Format("2006/01/02"), uuid.NewString()[:8], path.Base(fileName))
	if err := a.objects.Put(ctx, a.bucket, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", err
	}
	return key, nil
}

func (a *ExportStore) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	link, err := a.objects.PresignDownload(ctx, a.bucket, key, exportLinkTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return link.URL, link.ExpiresAt, nil
}

var _ exports.Store = (*ExportStore)(nil)
