package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Ulyk04/file-manager/internal/logging"
)

// Uploads are staged as hidden temp files next to their final name. They
// are never listed, scanned or served, and leftovers from a crash are
// removed when the store is opened.
const (
	uploadTempPrefix = ".upload-"
	uploadTempSuffix = ".tmp"
)

func isUploadTemp(name string) bool {
	return strings.HasPrefix(name, uploadTempPrefix) && strings.HasSuffix(name, uploadTempSuffix)
}

// StoredFile describes a file written by SaveUpload.
type StoredFile struct {
	Filename     string // name on disk
	OriginalName string // client-supplied name, reduced to its base name
	Size         int64
	VirtualPath  string
}

// ResolveUploadDir returns the absolute directory uploads for virtualPath
// are written to, creating it and any missing ancestors. Unlike
// CreateFolder it is idempotent.
func (s *Store) ResolveUploadDir(ctx context.Context, virtualPath string) (string, error) {
	norm := Normalize(virtualPath)
	if s.inTrash(norm) {
		return "", fmt.Errorf("%w: cannot upload into the trash", ErrInvalidTarget)
	}
	abs := Resolve(norm, s.root)
	if err := s.checkContained(abs); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		if errors.Is(err, syscall.ENOTDIR) || errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s is not a folder", ErrInvalidTarget, norm)
		}
		return "", fmt.Errorf("create upload dir %s: %w", norm, err)
	}
	logging.WithContext(ctx).Debug("upload dir ready", logging.String("path", norm))
	return abs, nil
}

// SaveUpload streams body into dir under "<unix-millis>-<name>". Content
// goes to a temp file in dir first and is renamed into place, so a failed
// upload never leaves a partial file under the final name.
func (s *Store) SaveUpload(ctx context.Context, dir, originalName string, body io.Reader) (StoredFile, error) {
	name := uploadBaseName(originalName)
	if name == "" {
		return StoredFile{}, fmt.Errorf("%w: %q", ErrInvalidName, originalName)
	}
	if !within(s.root, dir) {
		return StoredFile{}, fmt.Errorf("%w: upload dir outside storage root", ErrInvalidTarget)
	}

	tmp, err := os.CreateTemp(dir, uploadTempPrefix+"*"+uploadTempSuffix)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	size, err := io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return StoredFile{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return StoredFile{}, fmt.Errorf("close temp for %s: %w", name, err)
	}

	stamp := time.Now().UnixMilli()
	for i := 0; i < 100; i++ {
		stored := fmt.Sprintf("%d-%s", stamp+int64(i), name)
		dst := filepath.Join(dir, stored)
		err := renameNoReplace(tmpName, dst)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			os.Remove(tmpName)
			return StoredFile{}, fmt.Errorf("rename temp to %s: %w", stored, err)
		}

		vp := virtualPathOf(dst, s.root)
		logging.WithContext(ctx).Info("file uploaded",
			logging.String("path", vp),
			logging.Int64("size", size))
		return StoredFile{
			Filename:     stored,
			OriginalName: name,
			Size:         size,
			VirtualPath:  vp,
		}, nil
	}
	os.Remove(tmpName)
	return StoredFile{}, fmt.Errorf("store %s: no free name", name)
}

// uploadBaseName strips any directory part a client put in a filename.
func uploadBaseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimSpace(path.Base(name))
	if name == "." || name == "/" || name == ".." || strings.ContainsRune(name, 0) {
		return ""
	}
	return name
}

// sweepUploadTemps removes staged uploads left behind by a previous run.
func (s *Store) sweepUploadTemps() {
	removed := 0
	err := Walk(context.Background(), s.realRoot, nil, func(abs, rel string, d fs.DirEntry) error {
		if d.IsDir() || !isUploadTemp(d.Name()) {
			return nil
		}
		if err := os.Remove(abs); err != nil {
			logging.Warn("could not remove stale upload", logging.String("path", rel), logging.Err(err))
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		logging.Warn("stale upload sweep failed", logging.Err(err))
	}
	if removed > 0 {
		logging.Info("removed stale uploads", logging.Int("count", removed))
	}
}
