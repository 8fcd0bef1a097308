package chunker

import (
	"strings"
	"unicode"
)

// splitBody cuts body into pieces of at most budget runes, each at least
// MinLen long whenever the body allows it. Whitespace at each seam is
// dropped.
func splitBody(body string, budget int, cfg Config) []string {
	runes := []rune(body)
	if len(runes) <= budget {
		return []string{body}
	}

	var parts []string
	for len(runes) > budget {
		cut := findCut(runes, budget, cfg.MinLen, cfg.Terminators)
		if head := strings.TrimSpace(string(runes[:cut])); head != "" {
			parts = append(parts, head)
		}
		runes = trimLeadingSpace(runes[cut:])
	}
	if tail := strings.TrimSpace(string(runes)); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

// findCut picks the split position in runes, which is longer than budget.
// The latest terminator whose head and remainder both reach minLen wins.
// Failing that, a hard cut leaves exactly minLen for the remainder when the
// text is long enough for two such pieces. Only shorter text falls back to
// the latest terminator, then to a cut at the budget.
func findCut(runes []rune, budget, minLen int, terms string) int {
	total := len(runes)
	fallback := 0
	for p := budget; p >= 1; p-- {
		if !strings.ContainsRune(terms, runes[p-1]) {
			continue
		}
		if p < total && !unicode.IsSpace(runes[p]) {
			continue
		}
		if p >= minLen && remainderLen(runes, p) >= minLen {
			return p
		}
		if fallback == 0 {
			fallback = p
		}
	}

	if total >= 2*minLen {
		cut := min(budget, total-minLen)
		// Keep the seam off whitespace so trimming cannot shorten the remainder.
		for cut > minLen && unicode.IsSpace(runes[cut]) {
			cut--
		}
		return cut
	}
	if fallback > 0 {
		return fallback
	}
	return budget
}

// remainderLen is the length of runes[p:] once leading whitespace is trimmed.
func remainderLen(runes []rune, p int) int {
	n := len(runes) - p
	for i := p; i < len(runes) && unicode.IsSpace(runes[i]); i++ {
		n--
	}
	return n
}

func trimLeadingSpace(runes []rune) []rune {
	i := 0
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return runes[i:]
}
