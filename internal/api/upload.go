package api

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"time"

	"github.com/Ulyk04/file-manager/internal/events"
	"github.com/Ulyk04/file-manager/internal/logging"
	"github.com/Ulyk04/file-manager/internal/metrics"
	"github.com/Ulyk04/file-manager/pkg/protocol"
)

const (
	// uploadField is the multipart field carrying file parts.
	uploadField = "files"
	// multipartMemory is how much of a multipart body is held in memory
	// before parts spill to temporary files.
	multipartMemory = 32 << 20
)

// ─── Upload ─────────────────────────────────────────────────────────────────

// handleUpload stores every part of the "files" field in the folder named
// by the currentPath form field, creating it if needed. A failure stops
// the request; parts already stored stay in place.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.sendError(w, http.StatusRequestEntityTooLarge, "upload exceeds maximum size")
			return
		}
		s.sendError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File[uploadField]
	if len(parts) == 0 {
		s.sendError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	ctx := r.Context()
	dir, err := s.store.ResolveUploadDir(ctx, r.FormValue("currentPath"))
	if err != nil {
		s.sendStorageError(w, r, err)
		return
	}

	uploaded := make([]protocol.UploadedFile, 0, len(parts))
	for _, fh := range parts {
		file, err := s.storePart(r, dir, fh)
		if err != nil {
			metrics.RecordContentUpload(0, false)
			s.sendStorageError(w, r, err)
			return
		}
		metrics.RecordContentUpload(file.Size, true)
		s.publishEvent(events.Event{
			Type: events.EventCreate,
			Path: file.VirtualPath,
			Kind: "file",
			Size: file.Size,
		})
		uploaded = append(uploaded, file)
	}

	logging.WithContext(ctx).Info("upload complete", logging.Int("files", len(uploaded)))
	s.sendJSON(w, http.StatusOK, uploaded)
}

func (s *Server) storePart(r *http.Request, dir string, fh *multipart.FileHeader) (protocol.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return protocol.UploadedFile{}, err
	}
	defer f.Close()

	stored, err := s.store.SaveUpload(r.Context(), dir, fh.Filename, f)
	if err != nil {
		return protocol.UploadedFile{}, err
	}
	return protocol.UploadedFile{
		Filename:     stored.Filename,
		OriginalName: stored.OriginalName,
		Size:         stored.Size,
		MimeType:     partMimeType(fh),
		Path:         path.Join(s.config.StaticPrefix, stored.VirtualPath),
		VirtualPath:  stored.VirtualPath,
		UploadedAt:   time.Now().UTC(),
	}, nil
}

// partMimeType prefers the part's declared type, then the extension.
func partMimeType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(fh.Filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ─── Static ─────────────────────────────────────────────────────────────────

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	f, info, err := s.store.Open(r.Context(), r.PathValue("path"))
	if err != nil {
		s.sendStorageError(w, r, err)
		return
	}
	defer f.Close()

	if r.Method == http.MethodGet {
		metrics.RecordContentDownload(info.Size())
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
