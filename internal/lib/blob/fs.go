package blob

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FSStore keeps blobs as plain files under a root directory.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("fs storage requires a local directory")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating storage directory")
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) Driver() string { return "fs" }

func (s *FSStore) pathFor(key string) (string, error) {
	clean, err := validateKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Put streams into a temp file next to the target and renames it into place,
// so a reader never sees a partial blob.
func (s *FSStore) Put(ctx context.Context, key string, r io.Reader, _ string) (int64, error) {
	dataPath, err := s.pathFor(key)
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(dataPath); err == nil {
		return 0, errors.Wrap(ErrExists, key)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return 0, errors.Wrap(err, "creating blob directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return 0, errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, contextReader{ctx: ctx, r: r})
	if err != nil {
		_ = tmp.Close()
		return 0, errors.Wrap(err, "writing blob")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, errors.Wrap(err, "syncing blob")
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrap(err, "closing blob")
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return 0, errors.Wrap(err, "moving blob into place")
	}

	return size, nil
}

func (s *FSStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	dataPath, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(ErrNotFound, key)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening blob")
	}
	return file, nil
}

func (s *FSStore) Delete(_ context.Context, key string) error {
	dataPath, err := s.pathFor(key)
	if err != nil {
		return err
	}

	if err := os.Remove(dataPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "removing blob")
	}
	return nil
}

// contextReader stops a long copy once the request is gone.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
