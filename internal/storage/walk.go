package storage

import (
	"context"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Ulyk04/file-manager/internal/logging"
)

// SkipFunc reports whether the walk should leave out the entry at rel
// (slash-separated, relative to the walk root). A skipped directory is
// not descended into.
type SkipFunc func(rel string, d fs.DirEntry) bool

// VisitFunc is called for every entry the walk does not skip.
type VisitFunc func(abs, rel string, d fs.DirEntry) error

// Walk traverses root depth-first in lexical order. Unreadable
// directories are logged and pruned; the rest of the tree is still
// visited. An error from visit stops the walk.
func Walk(ctx context.Context, root string, skip SkipFunc, visit VisitFunc) error {
	log := logging.WithContext(ctx)
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			log.Warn("walk: skipping unreadable path", zap.String("path", p), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if skip != nil && skip(rel, d) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		return visit(p, rel, d)
	})
}
