// Package storage keeps uploaded files outside the database. Rows only hold
// the key a BlobStore returned.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type BlobStore interface {
	// Save writes r under dir and returns the key the blob is stored at.
	Save(ctx context.Context, dir, filename string, r io.Reader) (string, error)
	// Delete removes the blob at key. A missing blob is not an error.
	Delete(ctx context.Context, key string) error
	// URL turns a key returned by Save into a public URL.
	URL(key string) string
}

// LocalStore keeps blobs on disk under Root and serves them from BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{Root: root, BaseURL: baseURL}
}

func (s *LocalStore) Save(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := path.Join(dir, uuid.NewString()[:8]+"_"+cleanFilename(filename))
	dest := filepath.Join(s.Root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create blob %s: %w", key, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close blob %s: %w", key, err)
	}

	return key, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := path.Clean("/" + key)
	if clean == "/" || clean != "/"+strings.TrimPrefix(key, "/") {
		return fmt.Errorf("invalid blob key %q", key)
	}

	dest := filepath.Join(s.Root, filepath.FromSlash(clean))
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	return s.BaseURL + strings.TrimPrefix(key, "/")
}

// cleanFilename drops any directory part a client sent along with the name
// and slugifies the rest, keeping the extension.
func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	stem := slug.Make(strings.TrimSuffix(name, filepath.Ext(name)))
	if stem == "" {
		stem = "upload"
	}
	if len(ext) < 2 || slug.Make(ext[1:]) != ext[1:] {
		ext = ""
	}
	return stem + ext
}
