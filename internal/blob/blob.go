// Package blob is the file storage collaborator: an opaque name→URL store
// for uploaded images and issue files.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/magpress/magpress/internal/apperr"
)

// MaxSize is the upload size ceiling.
const MaxSize = 4 << 20 // 4MB

var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// Storage stores bytes under a derived key and returns a serving URL.
type Storage interface {
	Store(ctx context.Context, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// DiskStorage keeps blobs on the local filesystem under a base directory,
// served under a URL prefix. Collisions are avoided with a random suffix.
type DiskStorage struct {
	dir       string
	urlPrefix string
}

func NewDiskStorage(dir, urlPrefix string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &DiskStorage{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (d *DiskStorage) Store(_ context.Context, name, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &apperr.ValidationError{Field: "file", Reason: "empty upload"}
	}
	if len(data) > MaxSize {
		return "", &apperr.ValidationError{Field: "file", Reason: "exceeds 4MB limit"}
	}
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", &apperr.ValidationError{Field: "file", Reason: "unsupported content type " + contentType}
	}

	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." {
		base = "upload"
	}
	key := fmt.Sprintf("%s-%s%s", base, uuid.NewString()[:8], ext)
	if err := os.WriteFile(filepath.Join(d.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return d.urlPrefix + "/" + key, nil
}

func (d *DiskStorage) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, d.urlPrefix+"/") {
		return &apperr.ValidationError{Field: "url", Reason: "not a managed blob URL"}
	}
	key := filepath.Base(strings.TrimPrefix(url, d.urlPrefix+"/"))
	err := os.Remove(filepath.Join(d.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
