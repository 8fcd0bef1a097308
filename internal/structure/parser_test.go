package structure

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

const decreeText = `NGHỊ ĐỊNH
Quy định chi tiết một số điều của Luật
Căn cứ Luật Tổ chức Chính phủ;
Chương I
QUY ĐỊNH CHUNG
Điều 1. Phạm vi điều chỉnh
Nghị định này quy định chi tiết.
Điều 2. Đối tượng áp dụng
1. Cơ quan nhà nước.
2. Tổ chức, cá nhân có liên quan:
a) Doanh nghiệp;
b) Hộ kinh doanh.
Chương II
ĐIỀU KHOẢN THI HÀNH
Điều 3. Hiệu lực thi hành
Nghị định này có hiệu lực từ ngày ký.`

func TestParse_StatuteHierarchy(t *testing.T) {
	root := Parse(decreeText, doctree.DocumentMetadata{})

	assert.Equal(t, doctree.LevelRoot, root.Level)
	assert.Equal(t, "NGHỊ ĐỊNH Quy định chi tiết một số điều của Luật Căn cứ Luật Tổ chức Chính phủ;", root.Body)
	require.Len(t, root.Children, 2)

	ch1 := root.Children[0]
	assert.Equal(t, doctree.LevelChapter, ch1.Level)
	assert.Equal(t, "Chương I", ch1.Label)
	assert.Equal(t, "QUY ĐỊNH CHUNG", ch1.Title)
	assert.Empty(t, ch1.Body)
	require.Len(t, ch1.Children, 2)

	art1 := ch1.Children[0]
	assert.Equal(t, doctree.LevelSection, art1.Level)
	assert.Equal(t, "Điều 1", art1.Label)
	assert.Equal(t, "Phạm vi điều chỉnh", art1.Title)
	assert.Equal(t, "Nghị định này quy định chi tiết.", art1.Body)

	art2 := ch1.Children[1]
	require.Len(t, art2.Children, 2)
	assert.Equal(t, doctree.LevelClause, art2.Children[0].Level)
	assert.Equal(t, "1", art2.Children[0].Label)
	assert.Equal(t, "Cơ quan nhà nước.", art2.Children[0].Body)

	clause2 := art2.Children[1]
	assert.Equal(t, "Tổ chức, cá nhân có liên quan:", clause2.Body)
	require.Len(t, clause2.Children, 2)
	assert.Equal(t, doctree.LevelPoint, clause2.Children[1].Level)
	assert.Equal(t, "b", clause2.Children[1].Label)
	assert.Equal(t, "Hộ kinh doanh.", clause2.Children[1].Body)

	ch2 := root.Children[1]
	assert.Equal(t, "ĐIỀU KHOẢN THI HÀNH", ch2.Title)
	require.Len(t, ch2.Children, 1)
	assert.Equal(t, "Điều 3. Hiệu lực thi hành", ch2.Children[0].Heading())
}

func TestParse_InlineChapterTitle(t *testing.T) {
	root := Parse("Chương I. Quy định chung\nVăn bản này áp dụng chung.\nĐiều 1. Phạm vi\nNội dung.", doctree.DocumentMetadata{})
	require.Len(t, root.Children, 1)
	ch := root.Children[0]
	assert.Equal(t, "Quy định chung", ch.Title)
	assert.Equal(t, "Văn bản này áp dụng chung.", ch.Body)
	require.Len(t, ch.Children, 1)
}

func TestParse_DirectiveProfile(t *testing.T) {
	text := `CHỈ THỊ
Về tăng cường công tác phòng chống thiên tai
I. MỤC TIÊU
Bảo đảm an toàn cho người dân.
II. NHIỆM VỤ VÀ GIẢI PHÁP
1. Các bộ, ngành:
a) Rà soát kế hoạch
- Hoàn thành trước tháng 6.
- Báo cáo Thủ tướng.
b) Tổ chức diễn tập.
2. Ủy ban nhân dân các tỉnh chủ động ứng phó.`

	root := Parse(text, doctree.DocumentMetadata{Type: doctree.TypeDirective})
	require.Len(t, root.Children, 2)
	assert.Equal(t, "I", root.Children[0].Label)
	assert.Equal(t, "MỤC TIÊU", root.Children[0].Title)

	tasks := root.Children[1]
	require.Len(t, tasks.Children, 2)
	sec1 := tasks.Children[0]
	assert.Equal(t, doctree.LevelSection, sec1.Level)
	assert.Equal(t, "Các bộ, ngành:", sec1.Title)
	require.Len(t, sec1.Children, 2)

	clauseA := sec1.Children[0]
	assert.Equal(t, doctree.LevelClause, clauseA.Level)
	assert.Equal(t, "Rà soát kế hoạch", clauseA.Body)
	require.Len(t, clauseA.Children, 2)
	assert.Equal(t, doctree.LevelPoint, clauseA.Children[0].Level)
	assert.Empty(t, clauseA.Children[0].Label)
	assert.Equal(t, "Hoàn thành trước tháng 6.", clauseA.Children[0].Body)

	// Sentence-like remainder becomes body, not title.
	sec2 := tasks.Children[1]
	assert.Empty(t, sec2.Title)
	assert.Equal(t, "Ủy ban nhân dân các tỉnh chủ động ứng phó.", sec2.Body)
}

func TestParse_NoMarkers(t *testing.T) {
	text := "Văn bản không có cấu trúc.\nDòng thứ hai.\n\nĐoạn mới."
	root := Parse(text, doctree.DocumentMetadata{})
	assert.Empty(t, root.Children)
	assert.Equal(t, "Văn bản không có cấu trúc. Dòng thứ hai.\nĐoạn mới.", root.Body)
}

func TestParse_EmptyInput(t *testing.T) {
	root := Parse("", doctree.DocumentMetadata{})
	assert.Equal(t, doctree.LevelRoot, root.Level)
	assert.Empty(t, root.Body)
	assert.Empty(t, root.Children)
}

func TestParse_NonMonotonicOrdinalsKeepDocumentOrder(t *testing.T) {
	text := "Điều 5. Năm\nNội dung năm.\nĐiều 3. Ba\nNội dung ba.\nĐiều 6. Sáu\nNội dung sáu."
	root := Parse(text, doctree.DocumentMetadata{})
	require.Len(t, root.Children, 3)
	assert.Equal(t, "Điều 5", root.Children[0].Label)
	assert.Equal(t, "Điều 3", root.Children[1].Label)
	assert.Equal(t, "Điều 6", root.Children[2].Label)

	anomalies := Anomalies(root)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "Điều 3", anomalies[0].Label)
	assert.Equal(t, "Điều 5", anomalies[0].Previous)
	assert.Equal(t, 3, anomalies[0].Line)
}

func TestParse_BodyPrecedesChildren(t *testing.T) {
	root := Parse("Điều 1. Quy định\nPhần mở đầu.\n1. Khoản một.\nVẫn thuộc khoản một.", doctree.DocumentMetadata{})
	art := root.Children[0]
	assert.Equal(t, "Phần mở đầu.", art.Body)
	require.Len(t, art.Children, 1)
	assert.Equal(t, "Khoản một. Vẫn thuộc khoản một.", art.Children[0].Body)
}

func TestParse_DeeperMarkerWithoutParentAttachesToNearestAncestor(t *testing.T) {
	root := Parse("Chương I. Chung\na) Điểm không có khoản.\nĐiều 1. Tiêu đề\nb) Điểm trực tiếp.", doctree.DocumentMetadata{})
	ch := root.Children[0]
	require.Len(t, ch.Children, 2)
	assert.Equal(t, doctree.LevelPoint, ch.Children[0].Level)
	art := ch.Children[1]
	require.Len(t, art.Children, 1)
	assert.Equal(t, doctree.LevelPoint, art.Children[0].Level)
}

func TestParse_TieBreakPrefersCoarserLevel(t *testing.T) {
	rules := []Rule{
		{Level: doctree.LevelClause, Pattern: regexp.MustCompile(`^(\d+)\.\s+(.*)$`)},
		{Level: doctree.LevelChapter, Pattern: regexp.MustCompile(`^(\d+)\.\s+(\p{Lu}[\p{Lu} ]*)$`), Titled: true},
	}
	p := New(WithRules(rules))
	root := p.Parse("1. PHẦN CHUNG\n2. Nội dung khoản.", doctree.DocumentMetadata{})

	require.Len(t, root.Children, 1)
	ch := root.Children[0]
	assert.Equal(t, doctree.LevelChapter, ch.Level)
	assert.Equal(t, "PHẦN CHUNG", ch.Title)
	require.Len(t, ch.Children, 1)
	assert.Equal(t, doctree.LevelClause, ch.Children[0].Level)
}

func TestParse_ArticleReferenceIsNotAMarker(t *testing.T) {
	root := Parse("Điều 1. Áp dụng\nĐiều 5 của Luật này được hướng dẫn.", doctree.DocumentMetadata{})
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Điều 5 của Luật này được hướng dẫn.", root.Children[0].Body)
}

func TestDetectProfile(t *testing.T) {
	assert.Equal(t, ProfileStatute, DetectProfile([]string{"Điều 1. Phạm vi"}, doctree.DocumentMetadata{}))
	assert.Equal(t, ProfileStatute, DetectProfile([]string{"CHƯƠNG II"}, doctree.DocumentMetadata{}))
	assert.Equal(t, ProfileStatute, DetectProfile([]string{"1. Một"}, doctree.DocumentMetadata{Type: doctree.TypeDecree}))
	assert.Equal(t, ProfileDirective, DetectProfile([]string{"1. Một"}, doctree.DocumentMetadata{Type: doctree.TypeDirective}))
	assert.Equal(t, ProfileDirective, New(WithProfile(ProfileDirective)).resolveProfile([]string{"Điều 1."}, doctree.DocumentMetadata{}))
	assert.Equal(t, ProfileStatute, ParseProfile("statute"))
	assert.Equal(t, ProfileAuto, ParseProfile("other"))
}

func TestOrdinalValue(t *testing.T) {
	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{"Chương IV", 4, true},
		{"Chương XIX", 19, true},
		{"Điều 12a", 12, true},
		{"3", 3, true},
		{"a", 1, true},
		{"đ", 5, true},
		{"e", 6, true},
		{"", 0, false},
		{"Mục", 0, false},
	}
	for _, tt := range tests {
		got, ok := OrdinalValue(tt.label)
		assert.Equal(t, tt.ok, ok, "label %q", tt.label)
		assert.Equal(t, tt.want, got, "label %q", tt.label)
	}
}

func TestParse_Deterministic(t *testing.T) {
	a := Parse(decreeText, doctree.DocumentMetadata{})
	b := Parse(decreeText, doctree.DocumentMetadata{})
	assert.Equal(t, a, b)
	assert.True(t, strings.Contains(a.Children[0].Children[1].Children[1].Body, "liên quan"))
}
