//go:build !linux

package storage

func renameNoReplace(oldpath, newpath string) error {
	return renameChecked(oldpath, newpath)
}
