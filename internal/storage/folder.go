package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Ulyk04/file-manager/internal/logging"
)

// CreateFolder creates name inside the directory at parentVirtualPath.
//
// Sibling folders may not differ only by case. That is checked by reading
// the parent before creating, so two racing callers can both pass the
// check; os.Mkdir is exclusive, so at most one of them wins an exact-name
// race, but case variants created concurrently can still coexist.
func (s *Store) CreateFolder(ctx context.Context, parentVirtualPath, name string) (Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, ErrEmptyName
	}
	if err := validateName(name); err != nil {
		return Entry{}, err
	}

	parent := Normalize(parentVirtualPath)
	if s.inTrash(parent) {
		return Entry{}, fmt.Errorf("%w: %s", ErrInvalidParent, parent)
	}
	parentAbs := Resolve(parent, s.root)

	if err := s.checkContained(parentAbs); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidParent, err)
	}
	info, err := os.Stat(parentAbs)
	if err != nil || !info.IsDir() {
		return Entry{}, fmt.Errorf("%w: %s", ErrInvalidParent, parent)
	}

	siblings, err := os.ReadDir(parentAbs)
	if err != nil {
		return Entry{}, fmt.Errorf("read dir %s: %w", parent, err)
	}
	for _, d := range siblings {
		if d.IsDir() && strings.EqualFold(d.Name(), name) {
			return Entry{}, fmt.Errorf("%w: folder %q in %q", ErrAlreadyExists, d.Name(), "/"+parent)
		}
	}

	abs := filepath.Join(parentAbs, name)
	if err := os.Mkdir(abs, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Entry{}, fmt.Errorf("%w: %s", ErrAlreadyExists, path.Join(parent, name))
		}
		return Entry{}, fmt.Errorf("create folder %s: %w", path.Join(parent, name), err)
	}

	logging.WithContext(ctx).Info("folder created", zap.String("path", path.Join(parent, name)))

	return s.readEntry(abs, s.root)
}

// validateName rejects names that are not a single path segment.
func validateName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
