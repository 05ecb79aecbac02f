package object

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"ui-feedback-backend/internal/shared/util"
)

// Object describes a blob to store for an owner.
type Object struct {
	Owner       string
	Name        string
	ContentType string
}

// Stored is the result of a successful Put.
type Stored struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStore saves and retrieves screenshots.
type ObjectStore interface {
	Put(ctx context.Context, obj Object, r io.Reader) (Stored, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// NewKey builds an owner-scoped key with a random prefix for obj.
func NewKey(obj Object) (string, error) {
	name, err := util.SanitizeFileName(obj.Name)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(util.HashOwnerKey(obj.Owner), randomID()+"_"+name), nil
}

// Sniff reads up to 512 bytes from r to detect its content type. The returned
// reader replays those bytes followed by the rest of r.
func Sniff(r io.Reader) (io.Reader, string, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("read sniff: %w", err)
	}
	buf := append([]byte(nil), head[:n]...)
	return io.MultiReader(bytes.NewReader(buf), r), http.DetectContentType(buf), nil
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
