package doctree

import "strings"

// DocumentType is the legal form of a document.
type DocumentType string

const (
	TypeUnknown        DocumentType = "unknown"
	TypeDirective      DocumentType = "directive"       // Chỉ thị
	TypeCircular       DocumentType = "circular"        // Thông tư
	TypeDecision       DocumentType = "decision"        // Quyết định
	TypeOfficialLetter DocumentType = "official_letter" // Công văn
	TypeDispatch       DocumentType = "dispatch"        // Công điện
	TypeLaw            DocumentType = "law"             // Luật
	TypeDecree         DocumentType = "decree"          // Nghị định
	TypeResolution     DocumentType = "resolution"      // Nghị quyết
)

var vietnameseTypeNames = map[DocumentType]string{
	TypeDirective:      "CHỈ THỊ",
	TypeCircular:       "THÔNG TƯ",
	TypeDecision:       "QUYẾT ĐỊNH",
	TypeOfficialLetter: "CÔNG VĂN",
	TypeDispatch:       "CÔNG ĐIỆN",
	TypeLaw:            "LUẬT",
	TypeDecree:         "NGHỊ ĐỊNH",
	TypeResolution:     "NGHỊ QUYẾT",
}

// ParseDocumentType accepts either the English identifier ("decree") or the
// Vietnamese heading ("NGHỊ ĐỊNH", case-insensitive).
func ParseDocumentType(s string) DocumentType {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeUnknown
	}
	lower := strings.ToLower(s)
	for t, vn := range vietnameseTypeNames {
		if lower == string(t) || strings.EqualFold(s, vn) {
			return t
		}
	}
	return TypeUnknown
}

// Vietnamese returns the heading form of the type, e.g. "CHỈ THỊ".
func (t DocumentType) Vietnamese() string {
	return vietnameseTypeNames[t]
}

// Structured reports whether documents of this type are organised in
// Chương/Điều articles rather than numbered directive sections.
func (t DocumentType) Structured() bool {
	switch t {
	case TypeLaw, TypeDecree, TypeCircular, TypeResolution, TypeDecision:
		return true
	}
	return false
}

// DocumentMetadata describes the source document. It is copied by value into
// every derived block and chunk.
type DocumentMetadata struct {
	Number        string       `json:"number,omitempty" yaml:"number"`
	Type          DocumentType `json:"type,omitempty" yaml:"type"`
	IssuingBody   string       `json:"issuing_body,omitempty" yaml:"issuing_body"`
	IssueDate     string       `json:"issue_date,omitempty" yaml:"issue_date"` // YYYY-MM-DD
	Title         string       `json:"title,omitempty" yaml:"title"`
	Abstract      string       `json:"abstract,omitempty" yaml:"abstract"`
	SignerName    string       `json:"signer_name,omitempty" yaml:"signer_name"`
	SignerTitle   string       `json:"signer_title,omitempty" yaml:"signer_title"`
	EffectiveDate string       `json:"effective_date,omitempty" yaml:"effective_date"` // YYYY-MM-DD
}

// Merge returns m with every empty field filled from other.
func (m DocumentMetadata) Merge(other DocumentMetadata) DocumentMetadata {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&m.Number, other.Number)
	fill(&m.IssuingBody, other.IssuingBody)
	fill(&m.IssueDate, other.IssueDate)
	fill(&m.Title, other.Title)
	fill(&m.Abstract, other.Abstract)
	fill(&m.SignerName, other.SignerName)
	fill(&m.SignerTitle, other.SignerTitle)
	fill(&m.EffectiveDate, other.EffectiveDate)
	if m.Type == "" || m.Type == TypeUnknown {
		if other.Type != "" {
			m.Type = other.Type
		}
	}
	return m
}
