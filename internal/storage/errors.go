package storage

import "errors"

// Sentinel errors returned by Store operations. Anything else is an
// unexpected I/O failure and is wrapped with context.
var (
	ErrNotFound          = errors.New("not found")
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrInvalidParent     = errors.New("invalid parent path")
	ErrAlreadyExists     = errors.New("already exists")
	ErrEmptyName         = errors.New("name is required")
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidTarget     = errors.New("invalid target")
)
