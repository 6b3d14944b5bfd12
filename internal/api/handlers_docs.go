package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docmark/internal/project"
	"github.com/go-chi/chi/v5"
)

// handleGetProject returns a stored project container. Binary contents
// are left out; they are served through the attachments endpoint.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	p, err := s.orchestrator.Store().Load(id)
	if err != nil {
		s.storeError(w, err)
		return
	}

	atts := make([]map[string]any, 0)
	for i, e := range p.Entries {
		for _, f := range e.BinaryFiles {
			atts = append(atts, map[string]any{
				"name":  project.AttachmentName(i, f.FileName),
				"entry": i,
				"info":  project.Inspect(f),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"project":     p,
		"attachments": atts,
	})
}

// handleGetDocuments returns the parsed memo documents of a project.
func (s *Server) handleGetDocuments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	data, err := s.orchestrator.Store().LoadDocuments(id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"documents":`))
	w.Write(data)
	w.Write([]byte("}\n"))
}

func (s *Server) handleGetAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	name := chi.URLParam(r, "name")
	path, err := s.orchestrator.Store().AttachmentPath(id, name)
	if err != nil {
		s.storeError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

// handleDeleteProject deletes a project with its documents and attachments.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	if err := s.orchestrator.Store().Delete(id); err != nil {
		s.storeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": id})
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, project.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, project.ErrFormat), errors.Is(err, project.ErrUnsupportedVersion):
		s.log.Error("stored project unreadable", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	default:
		s.log.Error("store error", "error", err)
		jsonError(w, "storage error", http.StatusInternalServerError)
	}
}
