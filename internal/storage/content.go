package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// Open opens the file at virtualPath for reading. Folders, trashed items
// and paths escaping the root are reported as ErrNotFound.
func (s *Store) Open(_ context.Context, virtualPath string) (*os.File, fs.FileInfo, error) {
	norm := Normalize(virtualPath)
	if norm == "" || s.inTrash(norm) || isUploadTemp(path.Base(norm)) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, norm)
	}
	abs := Resolve(norm, s.root)
	if err := s.checkContained(abs); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(abs)
	if err != nil {
		if isNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, norm)
		}
		return nil, nil, fmt.Errorf("open %s: %w", norm, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", norm, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s is not a file", ErrNotFound, norm)
	}
	return f, info, nil
}
