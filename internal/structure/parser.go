// Package structure rebuilds the legal hierarchy (chapter, section, clause,
// point) of a normalized document.
package structure

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

// maxTitleRunes bounds how long a titled marker's remainder may be before it
// is treated as body text instead.
const maxTitleRunes = 160

// Parser builds a Root node from normalized text. A Parser is immutable and
// safe for concurrent use.
type Parser struct {
	profile Profile
	rules   []Rule // overrides the profile tables when set
}

// Option configures a Parser.
type Option func(*Parser)

// WithProfile forces a rule table instead of detecting one.
func WithProfile(p Profile) Option {
	return func(ps *Parser) {
		ps.profile = p
	}
}

// WithRules replaces the built-in tables. Rules are ordered coarse-first.
func WithRules(rules []Rule) Option {
	return func(ps *Parser) {
		ps.rules = orderRules(rules)
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse builds the hierarchy with a default Parser.
func Parse(clean string, meta doctree.DocumentMetadata) *doctree.Node {
	return New().Parse(clean, meta)
}

type frame struct {
	node  *doctree.Node
	paras [][]string
}

func (f *frame) addLine(line string) {
	if len(f.paras) == 0 {
		f.paras = append(f.paras, nil)
	}
	last := len(f.paras) - 1
	f.paras[last] = append(f.paras[last], line)
}

func (f *frame) breakParagraph() {
	if len(f.paras) > 0 && len(f.paras[len(f.paras)-1]) > 0 {
		f.paras = append(f.paras, nil)
	}
}

func (f *frame) close() {
	parts := make([]string, 0, len(f.paras))
	for _, p := range f.paras {
		if len(p) > 0 {
			parts = append(parts, strings.Join(p, " "))
		}
	}
	f.node.Body = strings.Join(parts, "\n")
}

// Parse scans clean line by line. A marker line opens a node at its level,
// closing every open node of equal or deeper level; the node is attached to
// the nearest remaining open ancestor. Text before the first marker belongs
// to the Root. Parse never fails: unrecognised text stays in bodies.
func (p *Parser) Parse(clean string, meta doctree.DocumentMetadata) *doctree.Node {
	lines := strings.Split(clean, "\n")
	rules := p.rules
	if rules == nil {
		rules = rulesFor(p.resolveProfile(lines, meta))
	}

	root := &doctree.Node{Level: doctree.LevelRoot}
	stack := []*frame{{node: root}}
	var titleTarget *doctree.Node

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		top := stack[len(stack)-1]
		if line == "" {
			top.breakParagraph()
			continue
		}

		rule, label, rest, ok := match(rules, line)
		if !ok {
			if titleTarget != nil && isHeadingCaps(line) {
				titleTarget.Title = strings.TrimSpace(titleTarget.Title + " " + line)
				continue
			}
			titleTarget = nil
			top.addLine(line)
			continue
		}
		titleTarget = nil

		for len(stack) > 1 && stack[len(stack)-1].node.Level >= rule.Level {
			stack[len(stack)-1].close()
			stack = stack[:len(stack)-1]
		}

		node := &doctree.Node{Level: rule.Level, Line: i + 1}
		if !rule.Unlabelled {
			node.Label = label
		}
		f := &frame{node: node}
		switch {
		case rule.Titled && looksLikeTitle(rest):
			node.Title = rest
		case rule.Titled && rest == "":
			titleTarget = node
		case rest != "":
			f.addLine(rest)
		}

		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, f)
	}

	for i := len(stack) - 1; i >= 0; i-- {
		stack[i].close()
	}
	return root
}

func (p *Parser) resolveProfile(lines []string, meta doctree.DocumentMetadata) Profile {
	if p.profile != ProfileAuto {
		return p.profile
	}
	return DetectProfile(lines, meta)
}

// DetectProfile picks statute rules when the text has Điều/Chương markers or
// the document type is article-structured, directive rules otherwise.
func DetectProfile(lines []string, meta doctree.DocumentMetadata) Profile {
	for _, l := range lines {
		if statuteProbe.MatchString(strings.TrimSpace(l)) {
			return ProfileStatute
		}
	}
	if meta.Type.Structured() {
		return ProfileStatute
	}
	return ProfileDirective
}

// looksLikeTitle reports whether a marker remainder reads as a heading
// rather than a sentence of body text.
func looksLikeTitle(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > maxTitleRunes {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(s)
	return last != '.' && last != ';' && last != '?' && last != '!'
}

// isHeadingCaps reports whether line is an upper-case title continuation,
// e.g. "QUY ĐỊNH CHUNG" following a bare "Chương I".
func isHeadingCaps(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 0
}
