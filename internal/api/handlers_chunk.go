package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dgallion1/lexchunk/internal/doctree"
	"github.com/dgallion1/lexchunk/internal/pipeline"
	"github.com/dgallion1/lexchunk/internal/source"
)

type chunkRequest struct {
	DocID    string                   `json:"doc_id"`
	Text     string                   `json:"text"`
	Metadata doctree.DocumentMetadata `json:"metadata"`
}

type chunkResponse struct {
	DocID      string                      `json:"doc_id"`
	Metadata   doctree.DocumentMetadata    `json:"metadata"`
	Blocks     int                         `json:"blocks"`
	Fallback   bool                        `json:"fallback,omitempty"`
	Chunks     []doctree.Chunk             `json:"chunks"`
	Rejections []doctree.RejectionLogEntry `json:"rejections"`
}

// handleChunk runs the pipeline synchronously. It accepts either a JSON
// body with raw text or a multipart upload with a "file" part.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	var doc pipeline.Document
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		text, err := source.ExtractFile(bytes.NewReader(data), filename, source.WithPdftotext(s.cfg.PDFFallbackPdftotext))
		if errors.Is(err, source.ErrUnsupportedFormat) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			jsonError(w, "text extraction failed: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		doc = pipeline.Document{ID: r.FormValue("doc_id"), Text: text, Metadata: metadataFromForm(r)}
	} else {
		var req chunkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
			return
		}
		doc = pipeline.Document{ID: req.DocID, Text: req.Text, Metadata: req.Metadata}
	}

	if doc.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	res := s.orchestrator.Processor().Process(doc)
	resp := chunkResponse{
		DocID:      res.DocID,
		Metadata:   res.Metadata,
		Blocks:     res.Blocks,
		Fallback:   res.Fallback,
		Chunks:     res.Chunks,
		Rejections: res.Rejections,
	}
	if resp.Rejections == nil {
		resp.Rejections = []doctree.RejectionLogEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// metadataFromForm reads caller-supplied metadata fields. Anything left
// empty is scraped from the text.
func metadataFromForm(r *http.Request) doctree.DocumentMetadata {
	meta := doctree.DocumentMetadata{
		Number:        r.FormValue("number"),
		IssuingBody:   r.FormValue("issuing_body"),
		IssueDate:     r.FormValue("issue_date"),
		Title:         r.FormValue("title"),
		EffectiveDate: r.FormValue("effective_date"),
	}
	if t := r.FormValue("type"); t != "" {
		meta.Type = doctree.ParseDocumentType(t)
	}
	return meta
}

func uploadError(filename string, err error) map[string]any {
	return map[string]any{
		"filename": filename,
		"error":    err.Error(),
	}
}

func pollURL(jobID string) string {
	return fmt.Sprintf("/api/ingest/%s/status", jobID)
}
