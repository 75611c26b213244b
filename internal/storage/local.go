package storage

import (
	"context"
	"os"
	"path/filepath"

	ierr "github.com/flexprice/invoicegen/internal/errors"
)

type localStore struct {
	root string
}

// NewLocalStore keeps documents as plain files under root
func NewLocalStore(root string) (DocumentStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to create document directory %s", root).
			Mark(ierr.ErrSystem)
	}
	return &localStore{root: root}, nil
}

func (s *localStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Put writes through a temp file and a rename so readers never see a partial document
func (s *localStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return ierr.WithError(err).WithHint("failed to store document").Mark(ierr.ErrSystem)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return ierr.WithError(err).WithHint("failed to store document").Mark(ierr.ErrSystem)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return ierr.WithError(err).WithHint("failed to store document").Mark(ierr.ErrSystem)
	}
	if err := tmp.Close(); err != nil {
		return ierr.WithError(err).WithHint("failed to store document").Mark(ierr.ErrSystem)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return ierr.WithError(err).WithHint("failed to store document").Mark(ierr.ErrSystem)
	}
	return nil
}

func (s *localStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ierr.WithError(err).WithHint("document not found").
				WithReportableDetails(map[string]any{"key": key}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).WithHint("failed to read document").Mark(ierr.ErrSystem)
	}
	return data, nil
}

func (s *localStore) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	info, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, ierr.WithError(err).WithHint("failed to check if document exists").Mark(ierr.ErrSystem)
	}
	return !info.IsDir(), nil
}

func (s *localStore) CanPresign() bool {
	return false
}

func (s *localStore) PresignedURL(_ context.Context, key string) (string, error) {
	return "", ierr.NewErrorf("presigned urls are not supported for local documents: %s", key).
		Mark(ierr.ErrInvalidOperation)
}
