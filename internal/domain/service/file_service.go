package service

import (
	"context"
	"io"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename, contentType string) (string, error)
	Close() error
}

// ImageFile is an uploaded image that can be opened more than once.
type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
