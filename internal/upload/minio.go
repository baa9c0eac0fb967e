package upload

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Ayush22-04/xetor-backen/internal/storage"
	"github.com/google/uuid"
)

// ObjectStore is the part of storage.MinIOStorage the uploader needs.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// MinIO stores images as objects under a random key and returns their public URL.
type MinIO struct {
	store ObjectStore
	newID func() string
}

func NewMinIO(store ObjectStore) *MinIO {
	return &MinIO{store: store, newID: func() string { return uuid.New().String() }}
}

func (m *MinIO) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := storage.ImagePrefix + m.newID() + ext
	contentType := http.DetectContentType(data)
	if err := m.store.UploadFile(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", failed("minio", err)
	}
	succeeded("minio")
	return m.store.PublicURL(key), nil
}
