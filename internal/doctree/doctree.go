package doctree

import (
	"fmt"
	"strings"
)

// Level is the hierarchy level of a Node. Lower values are coarser.
type Level int

const (
	LevelRoot Level = iota
	LevelChapter
	LevelSection
	LevelClause
	LevelPoint
)

func (l Level) String() string {
	switch l {
	case LevelRoot:
		return "root"
	case LevelChapter:
		return "chapter"
	case LevelSection:
		return "section"
	case LevelClause:
		return "clause"
	case LevelPoint:
		return "point"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Node is one level of the reconstructed legal hierarchy.
// Children are owned by their parent; there are no back-references.
type Node struct {
	Level    Level
	Label    string // Ordinal label as found in source, e.g. "Chương I", "Điều 3", "2", "a"
	Title    string // May be empty (clauses and points carry no title)
	Body     string // Text belonging directly to this node, excluding children
	Line     int    // 1-based source line of the marker (0 for root)
	Children []*Node
}

// Heading renders the node as it appears in an ancestor context list.
func (n *Node) Heading() string {
	switch {
	case n.Label == "":
		return n.Title
	case n.Title == "":
		return n.Label
	default:
		return n.Label + ". " + n.Title
	}
}

// Walk visits n and its descendants in pre-order. Returning false stops descent
// into the visited node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	var walk func(node *Node, depth int)
	walk = func(node *Node, depth int) {
		if !fn(node, depth) {
			return
		}
		for _, c := range node.Children {
			walk(c, depth+1)
		}
	}
	walk(n, 0)
}

// LeafBlock is one unit of flattened content in document order.
type LeafBlock struct {
	Seq      int
	Level    Level
	Context  []string // Enclosing headings, outermost first
	Text     string
	Metadata DocumentMetadata
}

// Range is an inclusive span of leaf block sequence indices.
type Range struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// Chunk is a bounded, context-enriched text unit ready for indexing.
type Chunk struct {
	ID          string           `json:"id"`
	Seq         int              `json:"seq"`
	Text        string           `json:"text"`
	Body        string           `json:"body"`
	Context     []string         `json:"context"`
	Metadata    DocumentMetadata `json:"metadata"`
	SourceRange Range            `json:"source_range"`
	Orphan      bool             `json:"orphan,omitempty"` // survived merging only because no neighbour existed
}

// Citation renders the context as a human readable location, e.g.
// "Chương I. Quy định chung, Điều 2. Đối tượng áp dụng".
func (c Chunk) Citation() string {
	return strings.Join(c.Context, ", ")
}

// RejectReason explains why a candidate chunk was dropped.
type RejectReason string

const (
	ReasonEmpty      RejectReason = "empty-after-normalization"
	ReasonBelowFloor RejectReason = "below-absolute-minimum-with-no-merge-target"
)

// RejectionLogEntry records a chunk dropped by the quality gate.
type RejectionLogEntry struct {
	DocID       string       `json:"doc_id"`
	BlockSeq    int          `json:"block_seq"`
	SourceRange Range        `json:"source_range"`
	Reason      RejectReason `json:"reason"`
	Text        string       `json:"text"`
}
