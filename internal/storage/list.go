package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Ulyk04/file-manager/internal/logging"
)

// List returns the immediate children of a directory, ordered by name.
// The trash directory is never listed.
func (s *Store) List(ctx context.Context, virtualPath string) ([]Entry, error) {
	norm := Normalize(virtualPath)
	if s.inTrash(norm) {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, norm)
	}
	abs := Resolve(norm, s.root)

	if err := s.checkContained(abs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryNotFound, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, norm)
		}
		return nil, fmt.Errorf("stat %s: %w", norm, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, norm)
	}

	skip := func(string) bool { return false }
	if norm == "" {
		skip = func(name string) bool { return name == s.trashName }
	}
	return s.listDir(ctx, abs, s.root, skip)
}

// ListTrash returns the items currently in the trash. Their virtual paths
// are relative to the trash directory.
func (s *Store) ListTrash(ctx context.Context) ([]Entry, error) {
	return s.listDir(ctx, s.trashRoot, s.trashRoot, func(string) bool { return false })
}

// listDir describes the children of dir relative to base. Children that
// vanish mid-listing, cannot be stat'ed, or escape the root through a
// symlink are left out.
func (s *Store) listDir(ctx context.Context, dir, base string, skip func(name string) bool) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", virtualPathOf(dir, s.root), err)
	}

	log := logging.WithContext(ctx)
	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		if skip(d.Name()) || isUploadTemp(d.Name()) {
			continue
		}
		child := filepath.Join(dir, d.Name())

		if d.Type()&fs.ModeSymlink != 0 {
			if err := s.checkContained(child); err != nil {
				log.Warn("skipping symlink", zap.String("path", virtualPathOf(child, s.root)), zap.Error(err))
				continue
			}
		}

		info, err := os.Stat(child)
		if err != nil {
			log.Debug("skipping unreadable entry", zap.String("path", virtualPathOf(child, s.root)), zap.Error(err))
			continue
		}
		e, ok := entryFromInfo(child, base, info)
		if !ok {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
