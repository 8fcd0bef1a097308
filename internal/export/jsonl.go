// Package export writes chunks and rejection logs as JSON Lines, one object
// per line, ready for an indexer to consume.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

// Record is the exported form of a chunk.
type Record struct {
	ID          string                   `json:"id"`
	DocID       string                   `json:"doc_id"`
	Seq         int                      `json:"seq"`
	Text        string                   `json:"text"`
	Body        string                   `json:"body"`
	Context     []string                 `json:"context"`
	Citation    string                   `json:"citation,omitempty"`
	SourceRange doctree.Range            `json:"source_range"`
	Metadata    doctree.DocumentMetadata `json:"metadata"`
}

// NewRecord prepares a chunk of docID for export.
func NewRecord(docID string, c doctree.Chunk) Record {
	ctx := c.Context
	if ctx == nil {
		ctx = []string{}
	}
	return Record{
		ID:          c.ID,
		DocID:       docID,
		Seq:         c.Seq,
		Text:        c.Text,
		Body:        c.Body,
		Context:     ctx,
		Citation:    c.Citation(),
		SourceRange: c.SourceRange,
		Metadata:    c.Metadata,
	}
}

// Writer streams chunk records and rejection entries to two outputs. Either
// output may be nil to discard that stream.
type Writer struct {
	chunks     *json.Encoder
	rejections *json.Encoder
	nChunks    int
	nRejected  int
}

func NewWriter(chunks, rejections io.Writer) *Writer {
	w := &Writer{}
	if chunks != nil {
		w.chunks = json.NewEncoder(chunks)
		w.chunks.SetEscapeHTML(false)
	}
	if rejections != nil {
		w.rejections = json.NewEncoder(rejections)
		w.rejections.SetEscapeHTML(false)
	}
	return w
}

// WriteDocument appends the chunks and rejections of one document.
func (w *Writer) WriteDocument(docID string, chunks []doctree.Chunk, rejections []doctree.RejectionLogEntry) error {
	if w.chunks != nil {
		for _, c := range chunks {
			if err := w.chunks.Encode(NewRecord(docID, c)); err != nil {
				return fmt.Errorf("encoding chunk %s: %w", c.ID, err)
			}
		}
	}
	if w.rejections != nil {
		for i, r := range rejections {
			if err := w.rejections.Encode(r); err != nil {
				return fmt.Errorf("encoding rejection %d of %s: %w", i, docID, err)
			}
		}
	}
	w.nChunks += len(chunks)
	w.nRejected += len(rejections)
	return nil
}

// Counts returns how many chunks and rejections have been written.
func (w *Writer) Counts() (chunks, rejections int) {
	return w.nChunks, w.nRejected
}

// ReadRecords parses a chunk JSONL stream.
func ReadRecords(r io.Reader) ([]Record, error) {
	var out []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, scanner.Err()
}
