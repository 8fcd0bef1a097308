package chunker

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

// unit is a merged run of consecutive blocks before splitting.
type unit struct {
	context []string
	body    string
	first   int
	last    int
	meta    doctree.DocumentMetadata
	orphan  bool
}

// ChunkID builds the stable identifier of the seq-th chunk of a document.
func ChunkID(docID string, seq int) string {
	return fmt.Sprintf("%s#%04d", docID, seq)
}

// Optimize merges short blocks, splits long ones and renders chunk text.
// Blocks must come from Flatten and cfg must be valid. Chunks are numbered
// from 0 in document order.
func Optimize(docID string, blocks []doctree.LeafBlock, cfg Config) []doctree.Chunk {
	units := mergeBlocks(blocks, cfg.MinLen)

	chunks := make([]doctree.Chunk, 0, len(units))
	for _, u := range units {
		prefix := renderPrefix(u.context, cfg)
		for _, body := range splitBody(u.body, bodyBudget(prefix, cfg.MaxLen), cfg) {
			seq := len(chunks)
			chunks = append(chunks, doctree.Chunk{
				ID:          ChunkID(docID, seq),
				Seq:         seq,
				Text:        RenderText(prefix, body),
				Body:        body,
				Context:     copyContext(u.context),
				Metadata:    u.meta,
				SourceRange: doctree.Range{First: u.first, Last: u.last},
				Orphan:      u.orphan,
			})
		}
	}
	return chunks
}

// RenderText joins a rendered context prefix and a body. A chunk with no
// context is its body alone.
func RenderText(prefix, body string) string {
	if prefix == "" {
		return body
	}
	return prefix + "\n" + body
}

// mergeBlocks folds blocks whose body is under minLen into a neighbour. A
// short block is carried forward when the next block is its descendant or
// its sibling; otherwise it is appended to the previous unit. With neither
// available it passes through alone and is flagged orphan.
func mergeBlocks(blocks []doctree.LeafBlock, minLen int) []unit {
	var out []unit
	var carry *unit

	for i, b := range blocks {
		u := unit{
			context: b.Context,
			body:    b.Text,
			first:   b.Seq,
			last:    b.Seq,
			meta:    b.Metadata,
		}
		if carry != nil {
			u.body = carry.body + "\n" + u.body
			u.first = carry.first
			carry = nil
		}

		if RuneLen(u.body) >= minLen {
			out = append(out, u)
			continue
		}
		if i+1 < len(blocks) && inScope(u.context, blocks[i+1].Context) {
			carry = &u
			continue
		}
		if len(out) > 0 {
			prev := &out[len(out)-1]
			prev.body = prev.body + "\n" + u.body
			prev.last = u.last
			continue
		}
		out = append(out, u)
	}

	// Only a unit that found no merge target can still be short.
	for i := range out {
		out[i].orphan = RuneLen(out[i].body) < minLen
	}
	return out
}

// inScope reports whether next may receive a block with context ctx: next
// sits inside ctx's own subtree, or is a sibling under the same parent.
func inScope(ctx, next []string) bool {
	if len(next) >= len(ctx) && slices.Equal(next[:len(ctx)], ctx) {
		return true
	}
	n := len(ctx)
	return n > 0 && len(next) == n && slices.Equal(next[:n-1], ctx[:n-1])
}

// renderPrefix joins the context headings. A prefix that would leave less
// than half of MaxLen for the body loses its outermost headings first and is
// truncated as a last resort.
func renderPrefix(ctx []string, cfg Config) string {
	if len(ctx) == 0 {
		return ""
	}
	limit := cfg.MaxLen / 2
	if limit <= 1 {
		return ""
	}

	parts := ctx
	prefix := strings.Join(parts, cfg.ContextSeparator)
	for RuneLen(prefix)+1 > limit && len(parts) > 1 {
		parts = parts[1:]
		prefix = strings.Join(parts, cfg.ContextSeparator)
	}
	if RuneLen(prefix)+1 > limit {
		prefix = strings.TrimSpace(string([]rune(prefix)[:limit-1]))
	}
	return prefix
}

func bodyBudget(prefix string, maxLen int) int {
	if prefix == "" {
		return maxLen
	}
	return maxLen - RuneLen(prefix) - 1
}
