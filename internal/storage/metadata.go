package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
)

// ReadEntry stats an absolute path under the storage root and returns its
// Entry. Missing, unreadable or escaping paths yield ErrNotFound.
func (s *Store) ReadEntry(_ context.Context, abs string) (Entry, error) {
	if !within(s.root, abs) {
		return Entry{}, fmt.Errorf("%w: %s is outside storage root", ErrNotFound, abs)
	}
	return s.readEntry(abs, s.root)
}

// readEntry stats abs and describes it relative to base.
func (s *Store) readEntry(abs, base string) (Entry, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %s: %v", ErrNotFound, virtualPathOf(abs, base), err)
	}
	if err := s.checkContained(abs); err != nil {
		return Entry{}, err
	}
	e, ok := entryFromInfo(abs, base, info)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s is not a regular file or directory", ErrNotFound, virtualPathOf(abs, base))
	}
	return e, nil
}

// entryFromInfo builds an Entry from stat results. Only regular files and
// directories are representable.
//
// createdAt is the filesystem birth time where the platform exposes it
// (statx on Linux); elsewhere it falls back to the modification time.
func entryFromInfo(abs, base string, info fs.FileInfo) (Entry, bool) {
	var kind Kind
	var size int64
	switch {
	case info.IsDir():
		kind = KindFolder
	case info.Mode().IsRegular():
		kind = KindFile
		size = info.Size()
	default:
		return Entry{}, false
	}

	return Entry{
		Name:        info.Name(),
		Kind:        kind,
		Size:        size,
		CreatedAt:   birthTime(abs, info).UTC(),
		ModifiedAt:  info.ModTime().UTC(),
		VirtualPath: virtualPathOf(abs, base),
	}, true
}
