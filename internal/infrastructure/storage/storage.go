package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"flipearn/internal/domain/service"
	"flipearn/internal/infrastructure/metrics"

	"github.com/google/uuid"
)

// objectName builds a unique key under folder, keeping the client's file
// extension when the content type is unknown.
func objectName(folder, filename, contentType string, now time.Time) string {
	name := fmt.Sprintf("%s-%s%s", uuid.New().String(), now.Format("20060102150405"), extensionFor(contentType, filename))
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

func extensionFor(contentType, filename string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	return ".bin"
}

// InstrumentedUploader counts uploads by provider and outcome.
type InstrumentedUploader struct {
	next     service.ImageUploader
	provider string
	metrics  *metrics.Metrics
}

func NewInstrumentedUploader(next service.ImageUploader, provider string, m *metrics.Metrics) *InstrumentedUploader {
	return &InstrumentedUploader{next: next, provider: provider, metrics: m}
}

func (u *InstrumentedUploader) Upload(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
	url, err := u.next.Upload(ctx, file, filename, contentType)
	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.ImageUploads.WithLabelValues(u.provider, status).Inc()
	return url, err
}

func (u *InstrumentedUploader) Close() error {
	return u.next.Close()
}
