//go:build !linux

package storage

import (
	"io/fs"
	"time"
)

// birthTime has no portable source outside Linux; modification time stands in.
func birthTime(_ string, info fs.FileInfo) time.Time {
	return info.ModTime()
}
