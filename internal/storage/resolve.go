package storage

import (
	"path"
	"path/filepath"
	"strings"
)

// Normalize turns a client-supplied path into a VirtualPath: forward
// slashes, no leading slash, no "." or ".." segments. Input that would
// climb above the root collapses to the root itself (""). Normalization
// is total; every string maps to some path under the root.
func Normalize(virtualPath string) string {
	p := strings.ReplaceAll(virtualPath, `\`, "/")
	p = strings.TrimLeft(p, "/")
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return ""
	}
	return p
}

// Resolve joins the normalized virtual path onto base. The target is not
// required to exist.
func Resolve(virtualPath, base string) string {
	norm := Normalize(virtualPath)
	if norm == "" {
		return filepath.Clean(base)
	}
	return filepath.Join(base, filepath.FromSlash(norm))
}
