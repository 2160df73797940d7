package storage

import "time"

// Kind distinguishes files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Entry is the externally visible description of one file or folder.
// Timestamps marshal as RFC 3339 (ISO-8601) in UTC.
type Entry struct {
	Name        string    `json:"name"`
	Kind        Kind      `json:"kind"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	VirtualPath string    `json:"virtualPath"`
}
