// Package quality drops degenerate chunks and records why.
package quality

import (
	"strings"

	"github.com/dgallion1/lexchunk/internal/chunker"
	"github.com/dgallion1/lexchunk/internal/doctree"
)

// Filter splits chunks into accepted ones and a rejection log. A chunk is
// rejected when its body has no letters or digits, or when it is an orphan
// shorter than floor runes. Accepted chunks keep their ids and order.
// Rejection is terminal; nothing is repaired.
func Filter(chunks []doctree.Chunk, floor int) ([]doctree.Chunk, []doctree.RejectionLogEntry) {
	accepted := make([]doctree.Chunk, 0, len(chunks))
	var rejected []doctree.RejectionLogEntry

	for _, c := range chunks {
		reason, ok := Check(c, floor)
		if ok {
			accepted = append(accepted, c)
			continue
		}
		rejected = append(rejected, doctree.RejectionLogEntry{
			DocID:       docIDOf(c.ID),
			BlockSeq:    c.SourceRange.First,
			SourceRange: c.SourceRange,
			Reason:      reason,
			Text:        c.Body,
		})
	}
	return accepted, rejected
}

// Check reports whether a single chunk passes the gate, and the reason when
// it does not.
func Check(c doctree.Chunk, floor int) (doctree.RejectReason, bool) {
	if !chunker.HasContent(c.Body) {
		return doctree.ReasonEmpty, false
	}
	if c.Orphan && chunker.RuneLen(strings.TrimSpace(c.Body)) < floor {
		return doctree.ReasonBelowFloor, false
	}
	return "", true
}

func docIDOf(chunkID string) string {
	if i := strings.LastIndexByte(chunkID, '#'); i >= 0 {
		return chunkID[:i]
	}
	return chunkID
}
