package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/models"
)

// LocalStore keeps assets on the local filesystem. Files are served by the
// HTTP server under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore returns a store writing below dir.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir returns the root directory of the store.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Upload(_ context.Context, in Upload) (models.Image, error) {
	key := objectKey(in.ContentType)
	path, err := s.path(key)
	if err != nil {
		return models.Image{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return models.Image{}, err
	}
	if err := os.WriteFile(path, in.Content, 0o600); err != nil {
		return models.Image{}, err
	}
	return models.Image{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

func (s *LocalStore) Delete(_ context.Context, publicID string) error {
	path, err := s.path(publicID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) DeleteMany(ctx context.Context, publicIDs []string) error {
	var errs []error
	for _, id := range publicIDs {
		if err := s.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// path resolves a public id inside the store directory.
func (s *LocalStore) path(publicID string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(publicID))
	if publicID == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid asset id %q", publicID)
	}
	return filepath.Join(s.dir, clean), nil
}
