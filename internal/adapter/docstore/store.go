// Package docstore keeps uploaded supporting documents on the local
// filesystem and hands back an opaque reference.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// ErrTooLarge is returned when an upload exceeds the configured size limit.
var ErrTooLarge = errors.New("document too large")

// Store writes documents under a root directory.
type Store struct {
	root     string
	maxBytes int64
	now      func() time.Time
}

// New creates the root directory if needed and returns a Store.
func New(root string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create document root: %w", err)
	}
	return &Store{root: root, maxBytes: maxBytes, now: time.Now}, nil
}

// Upload stores r and returns its reference ("YYYY/MM/<uuid><ext>").
// The original filename only contributes its extension.
func (s *Store) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := s.now().UTC()
	ref := path.Join(now.Format("2006"), now.Format("01"), uuid.NewString()+cleanExt(filename))
	full := filepath.Join(s.root, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("create document dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("write document: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("close document: %w", closeErr)
	case n > s.maxBytes:
		_ = os.Remove(full)
		return "", fmt.Errorf("%w: limit %d bytes", ErrTooLarge, s.maxBytes)
	case n == 0:
		_ = os.Remove(full)
		return "", domain.NewValidationError("file", "empty")
	}

	return ref, nil
}

// Exists reports whether ref names a stored document.
func (s *Store) Exists(_ context.Context, ref string) (bool, error) {
	clean := path.Clean(ref)
	if clean != ref || strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return false, nil
	}
	_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat document: %w", err)
	}
	return true, nil
}

func cleanExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
