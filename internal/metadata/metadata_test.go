package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

const directiveRaw = `THỦ TƯỚNG CHÍNH PHỦ
-------
Số: 20/CT-TTg
CỘNG HÒA XÃ HỘI CHỦ NGHĨA VIỆT NAM
Độc lập - Tự do - Hạnh phúc
Hà Nội, ngày 5 tháng 7 năm 2024

CHỈ THỊ
Về tăng cường công tác phòng, chống thiên tai
trong mùa mưa bão

Thời gian qua, công tác phòng chống thiên tai đã đạt kết quả.
1. Các bộ, ngành triển khai ngay.
Thủ tướng yêu cầu thực hiện nghiêm./.

Nơi nhận:
- Ban Bí thư Trung ương Đảng;
KT. THỦ TƯỚNG
PHÓ THỦ TƯỚNG
Trần Hồng Hà`

func TestExtract_Directive(t *testing.T) {
	m := Extract(directiveRaw)

	assert.Equal(t, "20/CT-TTg", m.Number)
	assert.Equal(t, doctree.TypeDirective, m.Type)
	assert.Equal(t, "THỦ TƯỚNG CHÍNH PHỦ", m.IssuingBody)
	assert.Equal(t, "2024-07-05", m.IssueDate)
	assert.Equal(t, "Chỉ Thị 20/CT-TTg", m.Title)
	assert.Equal(t, "Về tăng cường công tác phòng, chống thiên tai trong mùa mưa bão", m.Abstract)
	assert.Equal(t, "PHÓ THỦ TƯỚNG", m.SignerTitle)
	assert.Equal(t, "Trần Hồng Hà", m.SignerName)
}

func TestExtract_EmptyAndUnstructured(t *testing.T) {
	assert.Equal(t, doctree.DocumentMetadata{}, Extract(""))

	m := Extract("Một đoạn văn không có thông tin gì.")
	assert.Empty(t, m.Number)
	assert.Empty(t, m.Title)
}

func TestIssuerFor(t *testing.T) {
	tests := map[string]string{
		"20/CT-TTg":      "THỦ TƯỚNG CHÍNH PHỦ",
		"15/2024/NĐ-CP":  "CHÍNH PHỦ",
		"59/2020/QH14":   "QUỐC HỘI",
		"01/2023/TT-BTC": "BỘ TÀI CHÍNH",
		"07/CT-NHNN":     "NGÂN HÀNG NHÀ NƯỚC VIỆT NAM",
		"99/XYZ":         "",
		"2024/TT-BGDĐT":  "BỘ GIÁO DỤC VÀ ĐÀO TẠO",
	}
	for number, want := range tests {
		assert.Equal(t, want, IssuerFor(number), "number %s", number)
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("Hà Nội, ngày 01 tháng 12 năm 2023")
	require.True(t, ok)
	assert.Equal(t, "2023-12-01", d)

	d, ok = ParseDate("ngày 9/3/2021")
	require.True(t, ok)
	assert.Equal(t, "2021-03-09", d)

	_, ok = ParseDate("ngày 40 tháng 13 năm 2021")
	assert.False(t, ok)
	_, ok = ParseDate("không có ngày")
	assert.False(t, ok)
}

func TestLoadCatalog(t *testing.T) {
	csv := "\ufeffSố hiệu,Ngày ban hành,Ngày hiệu lực,Tên văn bản\n" +
		"20/CT-TTg,05/07/2024,05/07/2024,Chỉ thị về phòng chống thiên tai\n" +
		",01/01/2024,,bỏ qua\n" +
		"15/2024/NĐ-CP,2024-02-01,2024-03-15\n"

	cat, err := LoadCatalog(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, cat, 2)

	entry := cat["20/CT-TTg"]
	assert.Equal(t, "2024-07-05", entry.IssueDate)
	assert.Equal(t, "2024-07-05", entry.EffectiveDate)
	assert.Equal(t, "Chỉ thị về phòng chống thiên tai", entry.Title)
	assert.Equal(t, "2024-03-15", cat["15/2024/NĐ-CP"].EffectiveDate)
}

func TestCatalogEnrich_SuppliedFieldsWin(t *testing.T) {
	cat := Catalog{"20/CT-TTg": {Number: "20/CT-TTg", Title: "Catalog title", EffectiveDate: "2024-07-05"}}

	got := cat.Enrich(doctree.DocumentMetadata{Number: "20/CT-TTg", Title: "Scraped title"})
	assert.Equal(t, "Scraped title", got.Title)
	assert.Equal(t, "2024-07-05", got.EffectiveDate)

	unknown := doctree.DocumentMetadata{Number: "1/ABC"}
	assert.Equal(t, unknown, cat.Enrich(unknown))
}

func TestLoadCatalog_Empty(t *testing.T) {
	cat, err := LoadCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, cat)
}
