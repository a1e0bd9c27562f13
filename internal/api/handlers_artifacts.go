package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docdistill/internal/store"
)

// handleListArtifacts lists all stored artifact IDs.
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	ids, err := s.orchestrator.ArtifactStore().List()
	if err != nil {
		jsonError(w, "failed to list artifacts: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"artifacts": ids})
}

// handleGetArtifact serves the stored JSON for one document.
func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	data, err := s.orchestrator.ArtifactStore().Raw(docID)
	if err != nil {
		if errors.Is(err, store.ErrInvalidID) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if os.IsNotExist(err) {
			jsonError(w, "artifact not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to read artifact: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleDeleteArtifact removes one stored artifact.
func (s *Server) handleDeleteArtifact(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	st := s.orchestrator.ArtifactStore()
	existed := st.Exists(docID)
	if err := st.Delete(docID); err != nil {
		if errors.Is(err, store.ErrInvalidID) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, "failed to delete artifact: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": existed})
}
