// Package api provides the HTTP server and handlers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Ulyk04/file-manager/internal/config"
	"github.com/Ulyk04/file-manager/internal/events"
	"github.com/Ulyk04/file-manager/internal/logging"
	"github.com/Ulyk04/file-manager/internal/metrics"
	"github.com/Ulyk04/file-manager/internal/storage"
	"github.com/Ulyk04/file-manager/pkg/protocol"
)

// maxJSONBody caps request bodies of the JSON endpoints.
const maxJSONBody = 1 << 20

// Server is the HTTP server.
type Server struct {
	store       *storage.Store
	broadcaster *events.Broadcaster
	config      *config.Config
}

// NewServer creates a new server.
func NewServer(store *storage.Store, broadcaster *events.Broadcaster, cfg *config.Config) *Server {
	return &Server{
		store:       store,
		broadcaster: broadcaster,
		config:      cfg,
	}
}

// Handler returns the HTTP handler with logging, metrics and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Read endpoints
	mux.HandleFunc("GET /api/files-and-folders", s.handleFilesAndFolders)
	mux.HandleFunc("GET /api/recent-files", s.handleRecentFiles)
	mux.HandleFunc("GET /api/shared-files", s.handleSharedFiles)
	mux.HandleFunc("GET /api/trash-files", s.handleTrashFiles)

	// Write endpoints
	mux.HandleFunc("POST /api/create-folder", s.handleCreateFolder)
	mux.HandleFunc("POST /api/move-to-trash", s.handleMoveToTrash)
	mux.HandleFunc("POST /api/upload", s.handleUpload)

	// SSE endpoint
	mux.HandleFunc("GET /api/events", s.handleEvents)

	// Raw file bytes
	mux.HandleFunc("GET "+s.config.StaticPrefix+"/{path...}", s.handleStatic)

	// The mux records the matched pattern on the request it is handed, so
	// metrics must wrap it without an intervening WithContext copy.
	return logging.Middleware(metrics.Middleware(s.cors(mux)))
}

// cors sets permissive CORS headers and answers preflight requests.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.CORSOrigin == "" {
			next.ServeHTTP(w, r)
			return
		}
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.config.CORSOrigin)
		if s.config.CORSOrigin != "*" {
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, HEAD, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, Range")
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Length, Content-Range")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, protocol.HealthResponse{Status: "ok"})
}

// ─── SSE Events ─────────────────────────────────────────────────────────────

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.sendError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Subscribe before the headers go out so a client that has seen the
	// response cannot miss a following event.
	ch := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			data, err := events.MarshalEvent(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}

// publishEvent publishes an event to the broadcaster if available.
func (s *Server) publishEvent(event events.Event) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(event)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// decodeJSON strictly decodes a small JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}

// statusFor maps a storage error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrEmptyName),
		errors.Is(err, storage.ErrInvalidName),
		errors.Is(err, storage.ErrInvalidParent),
		errors.Is(err, storage.ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrDirectoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// resultLabel names the outcome of a mutation for metrics.
func resultLabel(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return "invalid"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "error"
	}
}

// sendStorageError reports err with the status statusFor picks. Unexpected
// failures are logged and hidden behind a generic message.
func (s *Server) sendStorageError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logging.WithContext(r.Context()).Error("storage operation failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.sendError(w, code, "internal server error")
		return
	}
	s.sendError(w, code, err.Error())
}

func (s *Server) sendJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) sendError(w http.ResponseWriter, code int, message string) {
	s.sendJSON(w, code, protocol.ErrorResponse{
		Error:   message,
		Message: message,
		Code:    code,
	})
}
