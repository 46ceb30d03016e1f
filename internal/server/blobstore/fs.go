package blobstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/dogspotter/internal/filex"
)

// FSStore stores images as plain files in one directory.
type FSStore struct {
	dir string
}

// NewFSStore creates dir if needed.
func NewFSStore(dir string) (*FSStore, error) {
	abs, err := filex.EnsureSubdDir(dir)
	if err != nil {
		return nil, err
	}
	return &FSStore{dir: abs}, nil
}

func (s *FSStore) Dir() string {
	return s.dir
}

func (s *FSStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return filex.WriteNew(s.dir, name, data)
}

func (s *FSStore) Delete(ctx context.Context, location string) error {
	clean := filepath.Clean(location)
	if filepath.Dir(clean) != s.dir || strings.HasPrefix(filepath.Base(clean), ".") {
		return fmt.Errorf("%s: %w", location, ErrForeignLocation)
	}
	return filex.RemoveIfExists(clean)
}
