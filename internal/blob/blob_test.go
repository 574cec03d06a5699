package blob

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/magpress/magpress/internal/apperr"
)

func newTestStorage(t *testing.T) *DiskStorage {
	t.Helper()
	s, err := NewDiskStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	return s
}

func TestStoreAndDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	url, err := s.Store(ctx, "cover.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/cover-") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url %q", url)
	}

	path := filepath.Join(s.dir, filepath.Base(url))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("blob not written: %v", err)
	}

	if err := s.Delete(ctx, url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("blob not removed")
	}
}

func TestStoreRejectsUnsupportedType(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Store(context.Background(), "payload.exe", "application/octet-stream", []byte("x"))
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStoreRejectsOversizedUpload(t *testing.T) {
	s := newTestStorage(t)

	big := bytes.Repeat([]byte("a"), MaxSize+1)
	_, err := s.Store(context.Background(), "big.png", "image/png", big)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStoreRejectsEmptyUpload(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Store(context.Background(), "empty.png", "image/png", nil)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRejectsForeignURL(t *testing.T) {
	s := newTestStorage(t)

	err := s.Delete(context.Background(), "https://elsewhere.example/file.png")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
