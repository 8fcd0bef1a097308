package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/lexchunk/internal/pipeline"
)

// handleListDocuments lists every stored document.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.orchestrator.Sink().ListDocuments(r.Context())
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []pipeline.DocumentInfo{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}

// handleDocumentChunks returns the stored chunks of one document.
func (s *Server) handleDocumentChunks(w http.ResponseWriter, r *http.Request) {
	reader, ok := s.orchestrator.Sink().(pipeline.ChunkReader)
	if !ok {
		jsonError(w, "chunk store does not support reads", http.StatusNotImplemented)
		return
	}
	docID := chi.URLParam(r, "docID")
	chunks, err := reader.Chunks(r.Context(), docID)
	if err != nil {
		jsonError(w, "failed to read chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(chunks) == 0 {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"doc_id": docID, "chunks": chunks})
}

// handleDeleteDocument deletes a document with its chunks and hash index.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.orchestrator.Sink().DeleteDocument(r.Context(), docID); err != nil {
		s.log.Error("delete document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"doc_id": docID, "deleted": true})
}
