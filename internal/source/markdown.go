package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown files using goldmark. Markdown syntax is
// dropped but list markers are written back, since "1." and "-" carry legal
// structure.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var w blockWriter
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		writeMarkdownBlock(&w, n, src)
	}
	return w.String(), nil
}

func writeMarkdownBlock(w *blockWriter, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.List:
		var items []string
		i := 0
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "-"
			if node.IsOrdered() {
				marker = fmt.Sprintf("%d%c", node.Start+i, node.Marker)
			}
			items = append(items, listItemText(item, marker, src))
			i++
		}
		w.block(strings.Join(items, "\n"))
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		w.block(blockLines(n, src))
	case *ast.ThematicBreak:
	default:
		w.block(inlineText(n, src))
	}
}

// listItemText renders an item as "marker text", nested lists on
// following lines.
func listItemText(item ast.Node, marker string, src []byte) string {
	var lines []string
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*ast.List); ok {
			var nested blockWriter
			writeMarkdownBlock(&nested, c, src)
			lines = append(lines, nested.String())
			continue
		}
		t := inlineText(c, src)
		if len(lines) == 0 {
			t = marker + " " + t
		}
		lines = append(lines, t)
	}
	if len(lines) == 0 {
		return marker
	}
	return strings.Join(lines, "\n")
}

// inlineText gets the text content of a goldmark AST node.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			return
		case *ast.String:
			buf.Write(t.Value)
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}
