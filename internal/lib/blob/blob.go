// Package blob stores uploaded attachment bytes.
//
// Two drivers exist: a local directory (default) and S3 or any
// S3-compatible server such as MinIO. Keys are slash-separated relative
// paths, e.g. "consults/<consult id>/<uuid>-report.pdf".
package blob

import (
	"context"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrExists     = errors.New("blob already exists")
	ErrInvalidKey = errors.New("invalid blob key")
)

// Store is the minimal surface attachments need.
type Store interface {
	Driver() string
	// Put writes r under key and returns the number of bytes stored. It
	// fails with ErrExists rather than overwriting.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)
	// Get opens the blob for reading; the caller closes it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg *config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.StorageDriverFS:
		return NewFSStore(cfg.LocalDir)
	case config.StorageDriverS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// SanitizeName reduces a client-supplied file name to a safe base name of
// letters, digits, '.', '-' and '_'. It never returns an empty string.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}

	clean := strings.Trim(b.String(), "._")
	if clean == "" {
		return "file"
	}
	if len(clean) > 120 {
		clean = clean[len(clean)-120:]
	}
	return clean
}

// validateKey rejects keys that could escape the store root.
func validateKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.Wrap(ErrInvalidKey, "empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", errors.Wrapf(ErrInvalidKey, "%q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", errors.Wrapf(ErrInvalidKey, "%q", key)
		}
	}
	return path.Clean(key), nil
}
