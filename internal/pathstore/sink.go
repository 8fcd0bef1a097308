package pathstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/dgallion1/lexchunk/internal/doctree"
	"github.com/dgallion1/lexchunk/internal/pipeline"
)

const source = "lexchunk"

// Sink stores documents under corpus/{collection}:
//
//	documents/{doc}/meta            DocumentInfo
//	documents/{doc}/chunks/{seq}    Chunk, linked to the next chunk
//	documents/{doc}/rejections/{n}  RejectionLogEntry
//	by_hash/{sha256}/{doc}          {"doc_id": ...}
type Sink struct {
	client *Client
	prefix string
}

var (
	_ pipeline.Sink        = (*Sink)(nil)
	_ pipeline.ChunkReader = (*Sink)(nil)
)

func NewSink(client *Client, collection string) *Sink {
	c := Slugify(collection)
	if c == "" {
		c = "default"
	}
	return &Sink{client: client, prefix: "corpus/" + c}
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// docKey maps a document id to a key segment. Ids that do not survive
// slugging unchanged get a hash suffix so distinct ids never collide.
func docKey(docID string) string {
	slug := Slugify(docID)
	if slug == docID {
		return slug
	}
	h := sha256.Sum256([]byte(docID))
	if slug == "" {
		return hex.EncodeToString(h[:8])
	}
	return slug + "-" + hex.EncodeToString(h[:4])
}

func (s *Sink) docPrefix(docID string) string {
	return fmt.Sprintf("%s/documents/%s", s.prefix, docKey(docID))
}

func (s *Sink) hashKey(hash, docID string) string {
	return fmt.Sprintf("%s/by_hash/%s/%s", s.prefix, hash, docKey(docID))
}

// StoreDocument replaces any previous version of the document.
func (s *Sink) StoreDocument(ctx context.Context, doc pipeline.StoredDocument) error {
	docID := doc.Info.DocID
	prefix := s.docPrefix(docID)
	src := source + ":" + docID

	if err := s.client.DeleteNode(ctx, prefix, true); err != nil {
		return fmt.Errorf("clear previous version: %w", err)
	}

	for _, c := range doc.Chunks {
		err := s.client.PutNode(ctx, chunkKey(prefix, c.Seq), NodeRequest{
			Value:      c,
			MemoryType: "document_chunk",
			Salience:   0.5,
			Source:     src,
		})
		if err != nil {
			return fmt.Errorf("store chunk %s: %w", c.ID, err)
		}
	}
	for i := 1; i < len(doc.Chunks); i++ {
		err := s.client.PutLink(ctx, LinkRequest{
			From:    chunkKey(prefix, doc.Chunks[i-1].Seq),
			To:      chunkKey(prefix, doc.Chunks[i].Seq),
			Weight:  1,
			Summary: "next",
		})
		if err != nil {
			return fmt.Errorf("link chunk %s: %w", doc.Chunks[i].ID, err)
		}
	}
	for i, r := range doc.Rejections {
		err := s.client.PutNode(ctx, fmt.Sprintf("%s/rejections/%04d", prefix, i), NodeRequest{
			Value:      r,
			MemoryType: "metacognitive",
			Salience:   0.1,
			Source:     src,
		})
		if err != nil {
			return fmt.Errorf("store rejection %d: %w", i, err)
		}
	}

	// Meta and hash index go last so a half-written document is never
	// reported as stored.
	err := s.client.PutNode(ctx, prefix+"/meta", NodeRequest{
		Value:      doc.Info,
		MemoryType: "metacognitive",
		Salience:   0.5,
		Source:     src,
	})
	if err != nil {
		return fmt.Errorf("store meta: %w", err)
	}
	if doc.Info.ContentHash != "" {
		err := s.client.PutNode(ctx, s.hashKey(doc.Info.ContentHash, docID), NodeRequest{
			Value:      map[string]any{"doc_id": docID},
			MemoryType: "metacognitive",
			Salience:   0.1,
			Source:     src,
		})
		if err != nil {
			return fmt.Errorf("store hash index: %w", err)
		}
	}
	return nil
}

func chunkKey(prefix string, seq int) string {
	return fmt.Sprintf("%s/chunks/%04d", prefix, seq)
}

func (s *Sink) FindByHash(ctx context.Context, hash string) (string, bool, error) {
	children, err := s.client.ListChildren(ctx, fmt.Sprintf("%s/by_hash/%s", s.prefix, hash), 1)
	if err != nil {
		return "", false, err
	}
	if len(children) == 0 {
		return "", false, nil
	}
	var entry struct {
		DocID string `json:"doc_id"`
	}
	if err := json.Unmarshal(children[0].Value, &entry); err != nil || entry.DocID == "" {
		// Fall back to the last key segment.
		parts := strings.Split(children[0].Key, ".")
		return parts[len(parts)-1], true, nil
	}
	return entry.DocID, true, nil
}

func (s *Sink) ListDocuments(ctx context.Context) ([]pipeline.DocumentInfo, error) {
	children, err := s.client.ListChildren(ctx, s.prefix+"/documents", 0)
	if err != nil {
		return nil, err
	}
	var docs []pipeline.DocumentInfo
	for _, child := range children {
		if !strings.HasSuffix(child.Key, ".meta") && !strings.HasSuffix(child.Key, "/meta") {
			continue
		}
		var info pipeline.DocumentInfo
		if err := json.Unmarshal(child.Value, &info); err != nil {
			return nil, fmt.Errorf("decode %s: %w", child.Key, err)
		}
		docs = append(docs, info)
	}
	slices.SortFunc(docs, func(a, b pipeline.DocumentInfo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return docs, nil
}

// Chunks reads the stored chunks of a document in order.
func (s *Sink) Chunks(ctx context.Context, docID string) ([]doctree.Chunk, error) {
	children, err := s.client.ListChildren(ctx, s.docPrefix(docID)+"/chunks", 0)
	if err != nil {
		return nil, err
	}
	chunks := make([]doctree.Chunk, 0, len(children))
	for _, child := range children {
		var c doctree.Chunk
		if err := json.Unmarshal(child.Value, &c); err != nil {
			return nil, fmt.Errorf("decode %s: %w", child.Key, err)
		}
		chunks = append(chunks, c)
	}
	slices.SortFunc(chunks, func(a, b doctree.Chunk) int { return a.Seq - b.Seq })
	return chunks, nil
}

// DeleteDocument removes a document and its hash index entry.
func (s *Sink) DeleteDocument(ctx context.Context, docID string) error {
	prefix := s.docPrefix(docID)
	meta, err := s.client.GetNode(ctx, prefix+"/meta")
	if err != nil {
		return err
	}
	if meta != nil {
		var info pipeline.DocumentInfo
		if err := json.Unmarshal(meta.Value, &info); err == nil && info.ContentHash != "" {
			if err := s.client.DeleteNode(ctx, s.hashKey(info.ContentHash, docID), false); err != nil {
				return fmt.Errorf("delete hash index: %w", err)
			}
		}
	}
	return s.client.DeleteNode(ctx, prefix, true)
}
