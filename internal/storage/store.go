// Package storage maps client-supplied virtual paths onto a sandboxed
// directory tree and implements listing, recent-file scans, folder
// creation, uploads and trash on top of it. The filesystem is the only
// source of truth; nothing is cached between calls.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// DefaultTrashDir is the reserved child of the storage root holding trashed items.
const DefaultTrashDir = ".trash"

// Store is a filesystem-backed storage root. It holds no mutable state and
// is safe for concurrent use; concurrent writers to the same path get
// whatever atomicity the filesystem's mkdir and rename provide.
type Store struct {
	root      string // absolute StorageRoot
	realRoot  string // root with symlinks evaluated
	trashName string
	trashRoot string
}

// New opens the storage root, creating it and its trash directory if absent.
func New(root, trashName string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if trashName == "" {
		trashName = DefaultTrashDir
	}
	if trashName == "." || trashName == ".." || strings.ContainsAny(trashName, `/\`) {
		return nil, fmt.Errorf("trash dir %q must be a single path segment", trashName)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(absRoot, 0755); err != nil {
			return nil, fmt.Errorf("create root %s: %w", absRoot, err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat root %s: %w", absRoot, err)
	case !info.IsDir():
		return nil, fmt.Errorf("root %s is not a directory", absRoot)
	}

	trashRoot := filepath.Join(absRoot, trashName)
	if err := os.MkdirAll(trashRoot, 0755); err != nil {
		return nil, fmt.Errorf("create trash %s: %w", trashRoot, err)
	}

	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("evaluate root %s: %w", absRoot, err)
	}

	s := &Store{
		root:      absRoot,
		realRoot:  realRoot,
		trashName: trashName,
		trashRoot: trashRoot,
	}
	s.sweepUploadTemps()
	return s, nil
}

// Root returns the absolute storage root.
func (s *Store) Root() string { return s.root }

// TrashRoot returns the absolute trash directory.
func (s *Store) TrashRoot() string { return s.trashRoot }

// Resolve maps a virtual path to an absolute path under the storage root.
func (s *Store) Resolve(virtualPath string) string {
	return Resolve(virtualPath, s.root)
}

// inTrash reports whether a normalized virtual path is the trash
// directory or lies beneath it.
func (s *Store) inTrash(norm string) bool {
	first, _, _ := strings.Cut(norm, "/")
	return first == s.trashName
}

// isTrash is the walk filter that prunes the trash subtree.
func (s *Store) isTrash(rel string, _ fs.DirEntry) bool {
	return rel == s.trashName
}

// checkContained verifies that abs, once symlinks are evaluated, still
// lies inside the storage root. Paths that do not exist yet are checked
// through their deepest existing ancestor.
func (s *Store) checkContained(abs string) error {
	p := abs
	for {
		real, err := filepath.EvalSymlinks(p)
		if err == nil {
			if !within(s.realRoot, real) {
				return fmt.Errorf("%w: %s resolves outside storage root", ErrNotFound, virtualPathOf(abs, s.root))
			}
			return nil
		}
		if !isNotExist(err) {
			return fmt.Errorf("evaluate %s: %w", abs, err)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return nil
		}
		p = parent
	}
}

// virtualPathOf converts an absolute path into a slash-separated path
// relative to base. base itself maps to "".
func virtualPathOf(abs, base string) string {
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// isNotExist reports whether err means the path is absent. A path running
// through a regular file ("a.txt/x") fails with ENOTDIR and counts too.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
