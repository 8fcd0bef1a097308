// Package normalize strips gazette noise from extracted legal text and puts it
// in a canonical form the structure parser can scan line by line.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Rules are the line patterns removed during normalization. Patterns are
// matched against trimmed, whitespace-collapsed lines.
type Rules struct {
	HeaderFooter []*regexp.Regexp
	Signature    []*regexp.Regexp
	Ignore       []*regexp.Regexp

	// EndMarker closes the normative content when it ends a line. Everything
	// after that line is the signature block and gazette trailer. Empty
	// disables truncation.
	EndMarker string
}

// DefaultRules returns the pattern sets for Vietnamese official gazette text.
func DefaultRules() Rules {
	return Rules{
		HeaderFooter: compile(
			`^CÔNG BÁO/Số`,
			`CÔNG\s*BÁO/Số\s*\d+\s*\+\s*\d+/`,
			`^\d+\s+CÔNG BÁO/Số`,
			`^Trang\s+\d+\s*/\s*\d+$`,
			`^-?\s*\d+\s*-?$`,
		),
		Signature: compile(
			`^(KT\.|TM\.|TL\.|Q\.)?\s*(PHÓ THỦ TƯỚNG|THỦ TƯỚNG|BỘ TRƯỞNG|THỨ TRƯỞNG|THỐNG ĐỐC|PHÓ THỐNG ĐỐC|CHỦ TỊCH|CHỦ NHIỆM)$`,
			`^(TM\. CHÍNH PHỦ|TM\. ỦY BAN THƯỜNG VỤ QUỐC HỘI|CHỦ TỊCH QUỐC HỘI)$`,
			`^\./\.$`,
		),
		Ignore: compile(
			`^CỘNG H(Ò|O)À XÃ HỘI CHỦ NGHĨA VIỆT NAM$`,
			`^Độc lập\s*-\s*Tự do\s*-\s*Hạnh phúc$`,
			`^[-_]{3,}$`,
			`^Ký bởi:`,
			`Email:\s*thongtinchinhphu@chinhphu\.vn`,
			`^Cơ quan:\s*Văn phòng Chính phủ`,
			`^Thời gian ký:`,
			`^(VGP|CHINHPHU\.VN|LONG THONG TIN DIEN TU.*|CỔNG THÔNG TIN ĐIỆN TỬ CHÍNH PHỦ)$`,
			`^VĂN PHÒNG CHÍNH PHỦ XUẤT BẢN$`,
			`^Giá:.*đồng$`,
			`^In tại `,
		),
		EndMarker: "./.",
	}
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Normalizer applies a rule set. It is safe for concurrent use.
type Normalizer struct {
	rules Rules
}

func New(rules Rules) *Normalizer {
	return &Normalizer{rules: rules}
}

var defaultNormalizer = New(DefaultRules())

// Normalize cleans raw with the default rule set.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

var (
	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n\n", "\v", "\n")
	invisible   = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "", "\u00ad", "")
)

// Normalize returns raw in NFC form with noise lines removed, whitespace runs
// inside each line collapsed to single spaces and blank-line runs collapsed
// to one paragraph break. It never fails.
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := norm.NFC.String(raw)
	text = lineEndings.Replace(text)
	text = invisible.Replace(text)
	text = n.truncate(text)

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	pendingBreak := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			pendingBreak = len(out) > 0
			continue
		}
		if n.Drop(line) {
			continue
		}
		if pendingBreak {
			out = append(out, "")
			pendingBreak = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Drop reports whether a single collapsed line is noise.
func (n *Normalizer) Drop(line string) bool {
	return matchAny(n.rules.HeaderFooter, line) ||
		matchAny(n.rules.Signature, line) ||
		matchAny(n.rules.Ignore, line)
}

// truncate drops everything after the first end-marker line. Form
// placeholders such as ".../QĐ-UBND" contain the marker text, so it only
// counts as the whole line or as a line ending not preceded by another dot.
func (n *Normalizer) truncate(text string) string {
	if n.rules.EndMarker == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if n.isEndLine(line) {
			return strings.Join(lines[:i+1], "\n")
		}
	}
	return text
}

func (n *Normalizer) isEndLine(line string) bool {
	marker := n.rules.EndMarker
	line = strings.TrimSpace(line)
	if line == marker {
		return true
	}
	rest, ok := strings.CutSuffix(line, marker)
	if !ok {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(rest)
	return last != '.'
}

func matchAny(patterns []*regexp.Regexp, line string) bool {
	for _, re := range patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
