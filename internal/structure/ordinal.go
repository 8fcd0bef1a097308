package structure

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

// Anomaly is a non-monotonic ordinal among siblings. Anomalies never stop
// parsing; nodes stay in document order.
type Anomaly struct {
	Line     int
	Level    doctree.Level
	Label    string
	Previous string
}

// Anomalies reports every child whose ordinal does not increase over the
// preceding labelled sibling at the same level.
func Anomalies(root *doctree.Node) []Anomaly {
	var out []Anomaly
	root.Walk(func(n *doctree.Node, _ int) bool {
		prev := map[doctree.Level]*doctree.Node{}
		for _, c := range n.Children {
			v, ok := OrdinalValue(c.Label)
			if !ok {
				continue
			}
			if p := prev[c.Level]; p != nil {
				pv, _ := OrdinalValue(p.Label)
				if v <= pv {
					out = append(out, Anomaly{Line: c.Line, Level: c.Level, Label: c.Label, Previous: p.Label})
				}
			}
			prev[c.Level] = c
		}
		return true
	})
	return out
}

// Vietnamese legal points are lettered without f, j, w and z.
const pointAlphabet = "abcdđeghiklmnopqrstuvxy"

// OrdinalValue extracts the numeric position from a label such as
// "Chương IV", "Điều 12a", "3" or "đ".
func OrdinalValue(label string) (int, bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, false
	}
	tok := fields[len(fields)-1]

	digits := strings.TrimRightFunc(tok, func(r rune) bool { return !unicode.IsDigit(r) })
	if digits != "" {
		n, err := strconv.Atoi(digits)
		return n, err == nil
	}
	if n, ok := romanValue(tok); ok {
		return n, true
	}
	if idx := strings.Index(pointAlphabet, strings.ToLower(tok)); idx >= 0 && len([]rune(tok)) == 1 {
		return len([]rune(pointAlphabet[:idx])) + 1, true
	}
	return 0, false
}

func romanValue(s string) (int, bool) {
	values := map[rune]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}
	total, prev := 0, 0
	runes := []rune(s)
	for i := len(runes) - 1; i >= 0; i-- {
		v, ok := values[runes[i]]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	return total, total > 0
}
