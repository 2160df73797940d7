package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Ulyk04/file-manager/internal/logging"
)

// maxTrashAttempts bounds the disambiguator search.
const maxTrashAttempts = 10000

// MoveToTrash renames the item at virtualPath into the trash directory and
// returns its new path relative to the trash. A name already taken in the
// trash gets a counter before its extension: "report (1).txt",
// "report (2).txt", and so on.
//
// The free-name search and the rename are separate steps. On Linux the
// rename refuses to replace an existing entry and the search continues;
// elsewhere a name claimed between the check and the rename is a known
// race.
func (s *Store) MoveToTrash(ctx context.Context, virtualPath string) (string, error) {
	norm := Normalize(virtualPath)
	if norm == "" {
		return "", fmt.Errorf("%w: cannot trash the storage root", ErrInvalidTarget)
	}
	if s.inTrash(norm) {
		return "", fmt.Errorf("%w: %s is already in the trash", ErrInvalidTarget, norm)
	}

	src := Resolve(norm, s.root)
	info, err := os.Lstat(src)
	if err != nil {
		if isNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, norm)
		}
		return "", fmt.Errorf("stat %s: %w", norm, err)
	}
	// The item itself may be a symlink; it is moved as a link, so only its
	// parent has to resolve inside the root.
	if err := s.checkContained(filepath.Dir(src)); err != nil {
		return "", err
	}

	base := info.Name()
	for n := 0; n < maxTrashAttempts; n++ {
		name := trashCandidate(base, n, info.IsDir())
		dst := filepath.Join(s.trashRoot, name)

		if _, err := os.Lstat(dst); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat trash entry %s: %w", name, err)
		}

		err := renameNoReplace(src, dst)
		switch {
		case err == nil:
			logging.WithContext(ctx).Info("moved to trash",
				zap.String("path", norm),
				zap.String("trash_name", name))
			return name, nil
		case errors.Is(err, fs.ErrExist):
			continue
		case isNotExist(err):
			return "", fmt.Errorf("%w: %s", ErrNotFound, norm)
		default:
			return "", fmt.Errorf("move %s to trash: %w", norm, err)
		}
	}
	return "", fmt.Errorf("move %s to trash: no free name after %d attempts", norm, maxTrashAttempts)
}

// trashCandidate returns the n-th candidate trash name for name. Files get
// the counter before their extension; folders and dot-files without a
// further extension get it appended.
func trashCandidate(name string, n int, isDir bool) string {
	if n == 0 {
		return name
	}
	stem, ext := name, ""
	if !isDir {
		ext = filepath.Ext(name)
		stem = strings.TrimSuffix(name, ext)
		if stem == "" {
			stem, ext = name, ""
		}
	}
	return fmt.Sprintf("%s (%d)%s", stem, n, ext)
}
