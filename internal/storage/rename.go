package storage

import (
	"errors"
	"io/fs"
	"os"
)

// renameChecked refuses to replace an existing destination. The check and
// the rename are separate calls, so a destination created in between is
// still overwritten on platforms without renameat2.
func renameChecked(oldpath, newpath string) error {
	if _, err := os.Lstat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(oldpath, newpath)
}
