// Package storage keeps uploaded files on local disk and hands back
// the descriptors messages carry. The chat core never touches file
// bytes; it only relays descriptors.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"personal-chat/domain"
)

type DiskStore struct {
	log     *slog.Logger
	dir     string
	baseURL string
}

func NewDiskStore(log *slog.Logger, dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &DiskStore{log: log, dir: dir, baseURL: baseURL}, nil
}

// Save streams the upload to disk under a collision-free name and
// returns the descriptor to attach to a message. The content type is
// sniffed from the stored bytes, not trusted from the client.
func (s *DiskStore) Save(originalName string, r io.Reader) (domain.FileDescriptor, error) {
	storedName := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return domain.FileDescriptor{}, fmt.Errorf("creating upload file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return domain.FileDescriptor{}, fmt.Errorf("writing upload: %w", err)
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		s.log.Warn("mime detection failed", "file", storedName, "error", err)
	} else {
		s.log.Info("stored upload", "file", storedName, "mime", mime.String(), "size", size)
	}

	return domain.FileDescriptor{
		URL:  s.baseURL + "/uploads/" + storedName,
		Name: originalName,
		Size: size,
	}, nil
}

// Dir exposes the storage directory so the HTTP layer can serve
// downloads from it.
func (s *DiskStore) Dir() string {
	return s.dir
}
