// Package metadata scrapes DocumentMetadata from the raw text of a Vietnamese
// legal document and enriches it from a CSV catalog.
package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

var (
	numberPattern = regexp.MustCompile(`Số:\s*(\S+)`)
	datePattern   = regexp.MustCompile(`(?i)ngày\s+(\d{1,2})\s*(?:tháng|-|/|\s)\s*(\d{1,2})\s*(?:năm|-|/|\s)\s*(\d{4})`)
	typePattern   = regexp.MustCompile(`^(?i:(CHỈ THỊ|NGHỊ ĐỊNH|THÔNG TƯ|QUYẾT ĐỊNH|LUẬT|CÔNG ĐIỆN|CÔNG VĂN|NGHỊ QUYẾT))$`)
	abstractStop  = regexp.MustCompile(`^(?i:căn cứ|chương\s|điều\s+\d|số:|kính gửi)|^([IVXLCDM]+|\d{1,3})\.\s|^[a-zđ]\)`)
	signerTitle   = regexp.MustCompile(`^(?i:(?:KT|TM|TL|Q)\.\s*)?(?i:(PHÓ THỦ TƯỚNG|THỦ TƯỚNG|BỘ TRƯỞNG|THỨ TRƯỞNG|THỐNG ĐỐC|PHÓ THỐNG ĐỐC|CHỦ TỊCH QUỐC HỘI|PHÓ CHỦ TỊCH QUỐC HỘI|CHỦ TỊCH NƯỚC|PHÓ CHỦ TỊCH NƯỚC|CHỦ TỊCH HỘI ĐỒNG NHÂN DÂN|PHÓ CHỦ TỊCH HỘI ĐỒNG NHÂN DÂN|CHỦ TỊCH ỦY BAN NHÂN DÂN|PHÓ CHỦ TỊCH ỦY BAN NHÂN DÂN|CHỦ NHIỆM|BỘ TRƯỞNG, CHỦ NHIỆM))$`)
	agencyDigits  = regexp.MustCompile(`\d+$`)
)

// Issuers by the full number suffix, e.g. "CT-TTg" in "12/CT-TTg".
var suffixIssuers = map[string]string{
	"CT-TTg":   "THỦ TƯỚNG CHÍNH PHỦ",
	"QĐ-TTg":   "THỦ TƯỚNG CHÍNH PHỦ",
	"CĐ-TTg":   "THỦ TƯỚNG CHÍNH PHỦ",
	"CT-NHNN":  "NGÂN HÀNG NHÀ NƯỚC VIỆT NAM",
	"CT-BTTTT": "BỘ THÔNG TIN VÀ TRUYỀN THÔNG",
	"CT-VPCP":  "VĂN PHÒNG CHÍNH PHỦ",
	"TT-BCA":   "BỘ CÔNG AN",
	"TT-BGDĐT": "BỘ GIÁO DỤC VÀ ĐÀO TẠO",
	"TT-BKHĐT": "BỘ KẾ HOẠCH VÀ ĐẦU TƯ",
	"NĐ-CP":    "CHÍNH PHỦ",
	"NQ-CP":    "CHÍNH PHỦ",
}

// Issuers by agency code, the part after the last dash.
var agencyIssuers = map[string]string{
	"TTg":    "THỦ TƯỚNG CHÍNH PHỦ",
	"CP":     "CHÍNH PHỦ",
	"QH":     "QUỐC HỘI",
	"UBTVQH": "ỦY BAN THƯỜNG VỤ QUỐC HỘI",
	"NHNN":   "NGÂN HÀNG NHÀ NƯỚC VIỆT NAM",
	"BCA":    "BỘ CÔNG AN",
	"BTC":    "BỘ TÀI CHÍNH",
	"BYT":    "BỘ Y TẾ",
	"VPCP":   "VĂN PHÒNG CHÍNH PHỦ",
}

const (
	maxAbstractLines = 15
	signerScanLines  = 50
)

var titleCaser = cases.Title(language.Vietnamese)

// Extract scrapes whatever metadata the raw text carries. Missing fields
// stay empty; Extract never fails.
func Extract(raw string) doctree.DocumentMetadata {
	var meta doctree.DocumentMetadata
	lines := cleanLines(norm.NFC.String(raw))

	typeIdx := -1
	for i, line := range lines {
		if line == "" {
			continue
		}
		if m := typePattern.FindStringSubmatch(line); m != nil && typeIdx < 0 {
			meta.Type = doctree.ParseDocumentType(m[1])
			typeIdx = i
			continue
		}
		if m := numberPattern.FindStringSubmatch(line); m != nil && meta.Number == "" {
			meta.Number = strings.TrimRight(m[1], ".,;")
			meta.IssuingBody = IssuerFor(meta.Number)
		}
		if meta.IssueDate == "" {
			if d, ok := ParseDate(line); ok {
				meta.IssueDate = d
			}
		}
	}

	if typeIdx >= 0 {
		meta.Abstract = abstract(lines[typeIdx+1:])
		if meta.Number != "" {
			meta.Title = titleCaser.String(strings.ToLower(meta.Type.Vietnamese())) + " " + meta.Number
		}
	}
	meta.SignerTitle, meta.SignerName = signer(lines)
	return meta
}

// IssuerFor maps a document number such as "05/2024/NĐ-CP" to its issuing
// body, or "" when the suffix is unknown.
func IssuerFor(number string) string {
	suffix := number
	if i := strings.LastIndexByte(number, '/'); i >= 0 {
		suffix = number[i+1:]
	}
	if issuer, ok := suffixIssuers[suffix]; ok {
		return issuer
	}
	agency := suffix
	if i := strings.LastIndexByte(suffix, '-'); i >= 0 {
		agency = suffix[i+1:]
	}
	return agencyIssuers[agencyDigits.ReplaceAllString(agency, "")]
}

// ParseDate finds a "ngày d tháng m năm yyyy" date in s and returns it as
// YYYY-MM-DD.
func ParseDate(s string) (string, bool) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// abstract collects the subject lines printed under the type heading, up to
// the first blank line, preamble or body sentence.
func abstract(lines []string) string {
	var parts []string
	for i, line := range lines {
		if i >= maxAbstractLines {
			break
		}
		if line == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		if abstractStop.MatchString(line) || datePattern.MatchString(line) || !isSubjectLine(line) {
			break
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

func isSubjectLine(line string) bool {
	if strings.Trim(line, "-_ ") == "" {
		return false
	}
	last := line[len(line)-1]
	return last != '.' && last != ';' && last != ':'
}

// signer scans the document tail bottom-up for the signer's title line and
// the personal name printed below it.
func signer(lines []string) (title, name string) {
	start := max(0, len(lines)-signerScanLines)
	for i := len(lines) - 1; i >= start; i-- {
		line := lines[i]
		if line == "" {
			continue
		}
		if m := signerTitle.FindStringSubmatch(line); m != nil {
			if title == "" {
				title = strings.ToUpper(m[1])
			}
			if name != "" {
				break
			}
			continue
		}
		if name == "" && isPersonalName(line) {
			name = line
			if title != "" {
				break
			}
		}
	}
	return title, name
}

// isPersonalName matches two to five capitalised words, e.g. "Phạm Minh Chính".
func isPersonalName(line string) bool {
	n := len([]rune(line))
	if n < 5 || n > 50 {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 5 {
		return false
	}
	for _, w := range words {
		for i, r := range []rune(w) {
			if !unicode.IsLetter(r) {
				return false
			}
			if (i == 0) != unicode.IsUpper(r) {
				return false
			}
		}
	}
	return true
}

// cleanLines collapses whitespace inside each line and keeps blank lines as "".
func cleanLines(s string) []string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return lines
}
