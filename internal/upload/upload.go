// Package upload hands image bytes to a hosting backend and returns the public URL.
package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ayush22-04/xetor-backen/internal/config"
	"github.com/Ayush22-04/xetor-backen/internal/imageproc"
	"github.com/Ayush22-04/xetor-backen/pkg/logger"
	"github.com/Ayush22-04/xetor-backen/pkg/metrics"
)

// ErrUploadFailed is returned when the backend yields no usable URL.
var ErrUploadFailed = errors.New("image upload failed")

// Uploader stores image bytes and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

func failed(backend string, err error) error {
	metrics.Uploads.WithLabelValues(backend, "failed").Inc()
	return fmt.Errorf("%w: %s: %v", ErrUploadFailed, backend, err)
}

func succeeded(backend string) {
	metrics.Uploads.WithLabelValues(backend, "ok").Inc()
}

// Disabled rejects every upload; used when no backend is configured.
type Disabled struct{}

func (Disabled) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	return "", failed("none", errors.New("no upload backend configured"))
}

// Compressing shrinks supported images before delegating to Next.
type Compressing struct {
	Next    Uploader
	Options imageproc.Options
}

func (c Compressing) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	out, used := imageproc.Compress(filename, data, c.Options)
	if used {
		logger.Debugf("compressed %s: %d -> %d bytes", filename, len(data), len(out))
	}
	return c.Next.Upload(ctx, filename, out)
}

// New picks the backend from configuration. An empty backend prefers imgbb when
// an API key is set, then MinIO when store is non-nil.
func New(cfg config.UploadConfig, store ObjectStore) Uploader {
	backend := cfg.Backend
	if backend == "" {
		switch {
		case cfg.ImgBBAPIKey != "":
			backend = "imgbb"
		case store != nil:
			backend = "minio"
		default:
			backend = "none"
		}
	}
	opts := imageproc.Options{MaxWidth: cfg.MaxWidth, MaxHeight: cfg.MaxHeight, Quality: cfg.CompressQuality}
	switch backend {
	case "imgbb":
		if cfg.ImgBBAPIKey == "" {
			logger.Warnf("UPLOAD_BACKEND=imgbb without IMGBB_API_KEY; uploads disabled")
			return Disabled{}
		}
		return Compressing{Next: NewImgBB(cfg.ImgBBURL, cfg.ImgBBAPIKey, cfg.Timeout), Options: opts}
	case "minio":
		if store == nil {
			logger.Warnf("UPLOAD_BACKEND=minio without a MinIO endpoint; uploads disabled")
			return Disabled{}
		}
		return Compressing{Next: NewMinIO(store), Options: opts}
	}
	return Disabled{}
}
