package api

import (
	"net/http"
	"path"
	"strconv"

	"github.com/Ulyk04/file-manager/internal/events"
	"github.com/Ulyk04/file-manager/internal/metrics"
	"github.com/Ulyk04/file-manager/internal/storage"
	"github.com/Ulyk04/file-manager/pkg/protocol"
)

// ─── Listings ───────────────────────────────────────────────────────────────

func (s *Server) handleFilesAndFolders(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List(r.Context(), r.URL.Query().Get("currentPath"))
	if err != nil {
		s.sendStorageError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, nonNil(entries))
}

func (s *Server) handleRecentFiles(w http.ResponseWriter, r *http.Request) {
	limit := s.config.RecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > s.config.RecentLimit {
			s.sendError(w, http.StatusBadRequest,
				"limit must be between 1 and "+strconv.Itoa(s.config.RecentLimit))
			return
		}
		limit = n
	}

	entries, err := s.store.ScanRecent(r.Context(), limit)
	if err != nil {
		s.sendStorageError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, nonNil(entries))
}

// handleSharedFiles always answers with an empty list; sharing is not
// implemented.
func (s *Server) handleSharedFiles(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, []storage.Entry{})
}

func (s *Server) handleTrashFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListTrash(r.Context())
	if err != nil {
		s.sendStorageError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, nonNil(entries))
}

// ─── Mutations ──────────────────────────────────────────────────────────────

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req protocol.CreateFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	var name string
	if req.Name != nil {
		name = *req.Name
	}

	entry, err := s.store.CreateFolder(r.Context(), req.CurrentPath, name)
	if err != nil {
		metrics.RecordFolderCreation(resultLabel(err))
		s.sendStorageError(w, r, err)
		return
	}
	metrics.RecordFolderCreation("success")

	s.publishEvent(events.Event{
		Type: events.EventCreate,
		Path: entry.VirtualPath,
		Kind: string(entry.Kind),
	})
	s.sendJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleMoveToTrash(w http.ResponseWriter, r *http.Request) {
	var req protocol.MoveToTrashRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Path == nil {
		s.sendError(w, http.StatusBadRequest, "path is required")
		return
	}

	src := storage.Normalize(*req.Path)
	newPath, err := s.store.MoveToTrash(r.Context(), src)
	if err != nil {
		metrics.RecordTrashMove(resultLabel(err), false)
		s.sendStorageError(w, r, err)
		return
	}
	metrics.RecordTrashMove("success", newPath != path.Base(src))

	s.publishEvent(events.Event{
		Type:      events.EventDelete,
		Path:      src,
		TrashPath: newPath,
	})
	s.sendJSON(w, http.StatusOK, protocol.MoveToTrashResponse{NewPath: newPath})
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil(entries []storage.Entry) []storage.Entry {
	if entries == nil {
		return []storage.Entry{}
	}
	return entries
}
