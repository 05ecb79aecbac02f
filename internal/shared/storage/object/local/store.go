package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ui-feedback-backend/internal/shared/storage/object"
)

// Store implements ObjectStore on the local filesystem.
type Store struct {
	baseDir string
}

// New creates a local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Put writes r under the owner's namespace with a random prefix.
func (s *Store) Put(ctx context.Context, obj object.Object, r io.Reader) (object.Stored, error) {
	if err := ctx.Err(); err != nil {
		return object.Stored{}, err
	}
	key, err := object.NewKey(obj)
	if err != nil {
		return object.Stored{}, err
	}
	body, sniffed, err := object.Sniff(r)
	if err != nil {
		return object.Stored{}, err
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = sniffed
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return object.Stored{}, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Stored{}, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return object.Stored{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, body)
	if err != nil {
		return object.Stored{}, fmt.Errorf("write body: %w", err)
	}
	return object.Stored{Key: key, Size: written, ContentType: contentType}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", object.ErrInvalidKey
	}
	return filepath.Join(s.baseDir, clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
