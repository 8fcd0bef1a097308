package pipeline

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

// DocumentInfo is the stored summary of one processed document.
type DocumentInfo struct {
	DocID         string                   `json:"doc_id"`
	Filename      string                   `json:"filename,omitempty"`
	ContentHash   string                   `json:"content_hash"`
	Metadata      doctree.DocumentMetadata `json:"metadata"`
	ChunkCount    int                      `json:"chunk_count"`
	RejectedCount int                      `json:"rejected_count"`
	CreatedAt     time.Time                `json:"created_at"`
}

// StoredDocument is everything a sink persists for a document.
type StoredDocument struct {
	Info       DocumentInfo
	Chunks     []doctree.Chunk
	Rejections []doctree.RejectionLogEntry
}

// Sink is the downstream collaborator that keeps emitted chunks. Writes of
// the same document id replace the previous version.
type Sink interface {
	StoreDocument(ctx context.Context, doc StoredDocument) error
	// FindByHash returns the id of a stored document with this content hash.
	FindByHash(ctx context.Context, hash string) (docID string, found bool, err error)
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	DeleteDocument(ctx context.Context, docID string) error
}

// ChunkReader is implemented by sinks that can read stored chunks back.
type ChunkReader interface {
	Chunks(ctx context.Context, docID string) ([]doctree.Chunk, error)
}

// MemorySink keeps documents in process memory. It backs SINK=none and
// tests.
type MemorySink struct {
	mu   sync.RWMutex
	docs map[string]StoredDocument
}

var (
	_ Sink        = (*MemorySink)(nil)
	_ ChunkReader = (*MemorySink)(nil)
)

func NewMemorySink() *MemorySink {
	return &MemorySink{docs: make(map[string]StoredDocument)}
}

func (s *MemorySink) StoreDocument(_ context.Context, doc StoredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.Info.DocID] = doc
	return nil
}

func (s *MemorySink) FindByHash(_ context.Context, hash string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, d := range s.docs {
		if d.Info.ContentHash == hash {
			return id, true, nil
		}
	}
	return "", false, nil
}

func (s *MemorySink) ListDocuments(_ context.Context) ([]DocumentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DocumentInfo, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d.Info)
	}
	slices.SortFunc(out, func(a, b DocumentInfo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *MemorySink) DeleteDocument(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docID)
	return nil
}

// Chunks returns the stored chunks of a document.
func (s *MemorySink) Chunks(_ context.Context, docID string) ([]doctree.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[docID].Chunks, nil
}
