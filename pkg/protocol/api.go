// Package protocol defines the API request/response types.
package protocol

import "time"

// ErrorResponse is returned on API errors. Message repeats Error for
// clients that read the "message" key.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// CreateFolderRequest is the body for POST /api/create-folder.
// CurrentPath is optional; empty means the storage root.
type CreateFolderRequest struct {
	Name        *string `json:"name"`
	CurrentPath string  `json:"currentPath"`
}

// MoveToTrashRequest is the body for POST /api/move-to-trash.
type MoveToTrashRequest struct {
	Path *string `json:"path"`
}

// MoveToTrashResponse is returned by POST /api/move-to-trash. NewPath is
// relative to the trash directory.
type MoveToTrashResponse struct {
	NewPath string `json:"newPath"`
}

// UploadedFile describes one stored file from POST /api/upload.
type UploadedFile struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalname"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimetype"`
	Path         string    `json:"path"`
	VirtualPath  string    `json:"virtualPath"`
	UploadedAt   time.Time `json:"uploadedAt"`
}
