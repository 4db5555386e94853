// Package blob stores raw uploaded files on the local filesystem and
// addresses them with file:// URLs. The pipeline never reads these back;
// they exist so a dataset record always points at the bytes it was built
// from.
package blob

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Store writes uploaded objects under a single root directory, one file
// per dataset id.
type Store struct {
	root string
}

// NewStore creates the root directory if needed and returns a store.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blob: resolve root %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root %q: %w", abs, err)
	}
	return &Store{root: abs}, nil
}

// Put stores the object under the dataset id, keeping the original file
// extension, and returns its file:// URL. An existing object under the
// same id is overwritten.
func (s *Store) Put(id, filename string, data []byte) (string, error) {
	name := id + sanitizeExt(filename)
	path := filepath.Join(s.root, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write %q: %w", name, err)
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String(), nil
}

// Open returns a reader over a previously stored object. Only file:// URLs
// pointing inside the store root are accepted.
func (s *Store) Open(rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("blob: parse url %q: %w", rawURL, err)
	}
	if u.Scheme != "file" {
		return nil, fmt.Errorf("blob: unsupported scheme %q", u.Scheme)
	}

	path := filepath.FromSlash(u.Path)
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return nil, fmt.Errorf("blob: url %q points outside the store", rawURL)
	}
	return os.Open(path)
}

// sanitizeExt returns the filename's extension when it is a plain
// alphanumeric suffix, otherwise nothing. The stored name must never
// depend on untrusted path components.
func sanitizeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if ext == "" || ext == "." {
		return ""
	}
	for _, r := range ext[1:] {
		ok := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		if !ok {
			return ""
		}
	}
	return strings.ToLower(ext)
}
