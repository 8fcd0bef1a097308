package chunker

import (
	"strings"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

// Flatten walks the tree in pre-order and emits one LeafBlock per node with
// a non-empty body. A block's context holds the headings of every non-root
// node from the outermost down to the node owning the body. The tree is not
// modified.
func Flatten(root *doctree.Node, meta doctree.DocumentMetadata) []doctree.LeafBlock {
	var blocks []doctree.LeafBlock
	if root == nil {
		return blocks
	}
	walkNode(root, nil, meta, &blocks)
	return blocks
}

// walkNode recursively visits nodes, collecting bodies with their context.
func walkNode(node *doctree.Node, context []string, meta doctree.DocumentMetadata, blocks *[]doctree.LeafBlock) {
	ctx := context
	if node.Level != doctree.LevelRoot {
		if h := node.Heading(); h != "" {
			ctx = append(copyContext(context), h)
		}
	}

	if strings.TrimSpace(node.Body) != "" {
		*blocks = append(*blocks, doctree.LeafBlock{
			Seq:      len(*blocks),
			Level:    node.Level,
			Context:  copyContext(ctx),
			Text:     node.Body,
			Metadata: meta,
		})
	}

	for _, child := range node.Children {
		walkNode(child, ctx, meta, blocks)
	}
}

func copyContext(ctx []string) []string {
	if len(ctx) == 0 {
		return []string{}
	}
	out := make([]string, len(ctx))
	copy(out, ctx)
	return out
}
