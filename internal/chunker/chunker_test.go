package chunker

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"testing"
	"unicode"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

func testConfig(minLen, maxLen int) Config {
	cfg := DefaultConfig()
	cfg.MinLen = minLen
	cfg.MaxLen = maxLen
	cfg.FloorLen = 5
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", DefaultConfig(), true},
		{"min equals max", Config{MinLen: 100, MaxLen: 100, FloorLen: 1, Terminators: "."}, false},
		{"min above max", Config{MinLen: 200, MaxLen: 100, FloorLen: 1, Terminators: "."}, false},
		{"zero max", Config{MinLen: 0, MaxLen: 0, Terminators: "."}, false},
		{"negative floor", Config{MinLen: 10, MaxLen: 100, FloorLen: -1, Terminators: "."}, false},
		{"floor at min", Config{MinLen: 10, MaxLen: 100, FloorLen: 10, Terminators: "."}, false},
		{"no terminators", Config{MinLen: 10, MaxLen: 100, FloorLen: 1}, false},
		{"zero floor", Config{MinLen: 10, MaxLen: 100, FloorLen: 0, Terminators: "."}, true},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("%s: expected error, got nil", tt.name)
			} else if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
			}
		}
	}
}

func TestFlatten_ContextAndOrder(t *testing.T) {
	root := &doctree.Node{
		Level: doctree.LevelRoot,
		Body:  "Phần mở đầu.",
		Children: []*doctree.Node{
			{
				Level: doctree.LevelChapter, Label: "Chương I", Title: "Quy định chung",
				Children: []*doctree.Node{
					{
						Level: doctree.LevelSection, Label: "Điều 1", Title: "Phạm vi",
						Body: "Nội dung điều một.",
						Children: []*doctree.Node{
							{Level: doctree.LevelClause, Label: "1", Body: "Khoản một."},
						},
					},
				},
			},
		},
	}
	meta := doctree.DocumentMetadata{Number: "01/2024/NĐ-CP"}

	blocks := Flatten(root, meta)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if len(blocks[0].Context) != 0 {
		t.Errorf("expected empty context for root body, got %v", blocks[0].Context)
	}
	want := []string{"Chương I. Quy định chung", "Điều 1. Phạm vi"}
	if strings.Join(blocks[1].Context, "|") != strings.Join(want, "|") {
		t.Errorf("expected context %v, got %v", want, blocks[1].Context)
	}
	if got := blocks[2].Context[len(blocks[2].Context)-1]; got != "1" {
		t.Errorf("expected clause label in context, got %q", got)
	}
	for i, b := range blocks {
		if b.Seq != i {
			t.Errorf("block %d: expected seq %d, got %d", i, i, b.Seq)
		}
		if b.Metadata.Number != meta.Number {
			t.Errorf("block %d: metadata not propagated", i)
		}
	}

	// Context slices must not alias each other.
	blocks[1].Context[0] = "changed"
	if blocks[2].Context[0] != "Chương I. Quy định chung" {
		t.Errorf("context slices share storage")
	}
}

func TestFlatten_SkipsEmptyBodiesAndUnlabelledHeadings(t *testing.T) {
	root := &doctree.Node{
		Level: doctree.LevelRoot,
		Children: []*doctree.Node{
			{
				Level: doctree.LevelSection, Label: "1", Title: "Nhiệm vụ",
				Children: []*doctree.Node{
					{Level: doctree.LevelPoint, Body: "Gạch đầu dòng."},
					{Level: doctree.LevelPoint, Body: "   "},
				},
			},
		},
	}
	blocks := Flatten(root, doctree.DocumentMetadata{})
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if len(blocks[0].Context) != 1 || blocks[0].Context[0] != "1. Nhiệm vụ" {
		t.Errorf("expected context [1. Nhiệm vụ], got %v", blocks[0].Context)
	}
	if got := Flatten(nil, doctree.DocumentMetadata{}); len(got) != 0 {
		t.Errorf("expected no blocks for nil tree, got %d", len(got))
	}
}

func TestOptimize_MergeForwardThenSplitAtSentence(t *testing.T) {
	intro := "Chương này áp dụng chung nhất."
	passage := strings.Repeat("Cơ quan nhà nước thực hiện đúng quy định hiện hành. ", 13) +
		"Các bộ ngành phối hợp thực hiện."
	if RuneLen(intro) != 30 || RuneLen(passage) < 690 {
		t.Fatalf("fixture lengths off: %d, %d", RuneLen(intro), RuneLen(passage))
	}

	root := &doctree.Node{
		Level: doctree.LevelRoot,
		Children: []*doctree.Node{
			{
				Level: doctree.LevelChapter, Label: "Chương I", Title: "Quy định chung",
				Body: intro,
				Children: []*doctree.Node{
					{Level: doctree.LevelSection, Label: "Điều 1", Title: "Phạm vi điều chỉnh", Body: passage},
				},
			},
		},
	}
	cfg := testConfig(50, 500)
	chunks := Optimize("doc", Flatten(root, doctree.DocumentMetadata{}), cfg)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0].Body, intro+"\n") {
		t.Errorf("expected short chapter body merged into first chunk, got %q", chunks[0].Body)
	}
	wantPrefix := "Chương I. Quy định chung > Điều 1. Phạm vi điều chỉnh\n"
	for i, c := range chunks {
		if !strings.HasPrefix(c.Text, wantPrefix) {
			t.Errorf("chunk %d: expected section context prefix, got %q", i, c.Text)
		}
		if n := RuneLen(c.Text); n > cfg.MaxLen || n < cfg.MinLen {
			t.Errorf("chunk %d: length %d outside [%d, %d]", i, n, cfg.MinLen, cfg.MaxLen)
		}
		if c.SourceRange.First != 0 || c.SourceRange.Last != 1 {
			t.Errorf("chunk %d: expected source range 0-1, got %+v", i, c.SourceRange)
		}
	}
	if !strings.HasSuffix(chunks[0].Body, ".") {
		t.Errorf("expected first piece to end at a sentence boundary, got %q", chunks[0].Body)
	}
	if chunks[0].ID != "doc#0000" || chunks[1].ID != "doc#0001" {
		t.Errorf("unexpected ids %q, %q", chunks[0].ID, chunks[1].ID)
	}
}

func TestOptimize_NoStructureSingleRootChunk(t *testing.T) {
	body := "Văn bản không có cấu trúc nào cả nhưng vẫn đủ dài để thành một đoạn.\nĐoạn thứ hai."
	root := &doctree.Node{Level: doctree.LevelRoot, Body: body}

	chunks := Optimize("doc", Flatten(root, doctree.DocumentMetadata{}), testConfig(20, 500))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != body {
		t.Errorf("expected text to be the full body, got %q", chunks[0].Text)
	}
	if len(chunks[0].Context) != 0 {
		t.Errorf("expected empty context, got %v", chunks[0].Context)
	}
}

func TestOptimize_ExactlyMinLenIsNotMerged(t *testing.T) {
	exact := strings.Repeat("x", 40)
	root := &doctree.Node{
		Level: doctree.LevelRoot,
		Children: []*doctree.Node{
			{Level: doctree.LevelSection, Label: "Điều 1", Body: exact},
			{Level: doctree.LevelSection, Label: "Điều 2", Body: strings.Repeat("y", 60)},
		},
	}
	chunks := Optimize("doc", Flatten(root, doctree.DocumentMetadata{}), testConfig(40, 200))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Body != exact {
		t.Errorf("expected first chunk untouched, got %q", chunks[0].Body)
	}
	if chunks[0].Orphan {
		t.Errorf("chunk at min length should not be an orphan")
	}
}

func TestOptimize_ShortBlockOutsideScopeMergesBackward(t *testing.T) {
	long1 := strings.Repeat("a", 80)
	long2 := strings.Repeat("b", 80)
	root := &doctree.Node{
		Level: doctree.LevelRoot,
		Children: []*doctree.Node{
			{
				Level: doctree.LevelSection, Label: "Điều 1", Body: long1,
				Children: []*doctree.Node{
					{Level: doctree.LevelClause, Label: "1", Body: "Ngắn."},
				},
			},
			{Level: doctree.LevelSection, Label: "Điều 2", Body: long2},
		},
	}
	chunks := Optimize("doc", Flatten(root, doctree.DocumentMetadata{}), testConfig(50, 300))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Body != long1+"\nNgắn." {
		t.Errorf("expected backward merge, got %q", chunks[0].Body)
	}
	if chunks[0].SourceRange != (doctree.Range{First: 0, Last: 1}) {
		t.Errorf("expected source range 0-1, got %+v", chunks[0].SourceRange)
	}
	if len(chunks[0].Context) != 1 || chunks[0].Context[0] != "Điều 1" {
		t.Errorf("expected receiving block context, got %v", chunks[0].Context)
	}
	if chunks[1].SourceRange.First != 2 {
		t.Errorf("expected second chunk from block 2, got %+v", chunks[1].SourceRange)
	}
}

func TestOptimize_IsolatedShortBlockIsOrphan(t *testing.T) {
	root := &doctree.Node{Level: doctree.LevelRoot, Body: "Ngắn."}
	chunks := Optimize("doc", Flatten(root, doctree.DocumentMetadata{}), testConfig(50, 300))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !chunks[0].Orphan {
		t.Errorf("expected orphan flag on isolated short chunk")
	}
}

func TestOptimize_ShortTrailingBlocksCascadeBackward(t *testing.T) {
	root := &doctree.Node{
		Level: doctree.LevelRoot,
		Children: []*doctree.Node{
			{Level: doctree.LevelSection, Label: "Điều 1", Body: "Một."},
			{Level: doctree.LevelSection, Label: "Điều 2", Body: "Hai."},
			{Level: doctree.LevelSection, Label: "Điều 3", Body: "Ba."},
		},
	}
	chunks := Optimize("doc", Flatten(root, doctree.DocumentMetadata{}), testConfig(50, 300))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Body != "Một.\nHai.\nBa." {
		t.Errorf("unexpected body %q", chunks[0].Body)
	}
	if chunks[0].Context[0] != "Điều 3" {
		t.Errorf("expected context of last receiving block, got %v", chunks[0].Context)
	}
	if !chunks[0].Orphan {
		t.Errorf("expected still-short merged chunk to be an orphan")
	}
}

func TestSplitBody_HardCutWithoutTerminators(t *testing.T) {
	body := strings.Repeat("a", 1000)
	parts := splitBody(body, 300, testConfig(50, 300))
	if len(parts) != 4 {
		t.Fatalf("expected 4 parts, got %d", len(parts))
	}
	if strings.Join(parts, "") != body {
		t.Errorf("hard cut lost content")
	}
	for i, p := range parts {
		if RuneLen(p) > 300 {
			t.Errorf("part %d exceeds budget: %d", i, RuneLen(p))
		}
	}
}

func TestSplitBody_RemnantIsBalanced(t *testing.T) {
	parts := splitBody(strings.Repeat("a", 320), 300, testConfig(50, 300))
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if RuneLen(parts[0]) != 270 || RuneLen(parts[1]) != 50 {
		t.Errorf("expected 270/50 split, got %d/%d", RuneLen(parts[0]), RuneLen(parts[1]))
	}
}

func TestSplitBody_TerminatorMustEndSentence(t *testing.T) {
	// "3.5" is not a sentence end; the only real boundary is after "xong."
	body := "Tỷ lệ đạt 3.5 phần trăm xong. " + strings.Repeat("b", 40)
	parts := splitBody(body, 40, testConfig(10, 60))
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d: %q", len(parts), parts)
	}
	if parts[0] != "Tỷ lệ đạt 3.5 phần trăm xong." {
		t.Errorf("unexpected first part %q", parts[0])
	}
}

func TestOptimize_LongContextPrefixIsShortened(t *testing.T) {
	h1 := strings.Repeat("A", 100)
	h2 := strings.Repeat("B", 100)
	h3 := strings.Repeat("C", 100)
	root := &doctree.Node{
		Level: doctree.LevelRoot,
		Children: []*doctree.Node{
			{Level: doctree.LevelChapter, Title: h1, Children: []*doctree.Node{
				{Level: doctree.LevelSection, Title: h2, Children: []*doctree.Node{
					{Level: doctree.LevelClause, Title: h3, Body: strings.Repeat("nội dung. ", 40)},
				}},
			}},
		},
	}
	cfg := testConfig(50, 300)
	chunks := Optimize("doc", Flatten(root, doctree.DocumentMetadata{}), cfg)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if RuneLen(c.Text) > cfg.MaxLen {
			t.Errorf("chunk %d: length %d exceeds max", i, RuneLen(c.Text))
		}
		if !strings.HasPrefix(c.Text, h3+"\n") {
			t.Errorf("chunk %d: expected innermost heading only in prefix", i)
		}
		if len(c.Context) != 3 {
			t.Errorf("chunk %d: full context should be kept on the chunk, got %d", i, len(c.Context))
		}
	}
}

func TestOptimize_BoundsOrderAndCoverage(t *testing.T) {
	var articles []*doctree.Node
	for i := 0; i < 12; i++ {
		body := strings.Repeat("Tổ chức thực hiện nghiêm túc nội dung. ", 1+i*5)
		art := &doctree.Node{Level: doctree.LevelSection, Label: "Điều " + strconv.Itoa(i+1), Title: "Tiêu đề", Body: strings.TrimSpace(body)}
		if i%3 == 0 {
			art.Children = []*doctree.Node{
				{Level: doctree.LevelClause, Label: "1", Body: "Khoản ngắn."},
				{Level: doctree.LevelClause, Label: "2", Body: strings.Repeat("Khoản dài hơn một chút. ", 6)},
			}
		}
		articles = append(articles, art)
	}
	root := &doctree.Node{Level: doctree.LevelRoot, Body: "Lời mở đầu.", Children: articles}
	blocks := Flatten(root, doctree.DocumentMetadata{})
	cfg := testConfig(80, 400)
	chunks := Optimize("doc", blocks, cfg)

	var in, out strings.Builder
	for _, b := range blocks {
		in.WriteString(b.Text)
	}
	for i, c := range chunks {
		out.WriteString(c.Body)
		if c.Seq != i {
			t.Errorf("chunk %d: expected seq %d, got %d", i, i, c.Seq)
		}
		if RuneLen(c.Text) > cfg.MaxLen {
			t.Errorf("chunk %d: length %d exceeds max %d", i, RuneLen(c.Text), cfg.MaxLen)
		}
		if !c.Orphan && RuneLen(c.Text) < cfg.MinLen {
			t.Errorf("chunk %d: short non-orphan text %q", i, c.Text)
		}
		if i > 0 && c.SourceRange.First < chunks[i-1].SourceRange.First {
			t.Errorf("chunk %d: source order regressed", i)
		}
	}
	if stripSpace(in.String()) != stripSpace(out.String()) {
		t.Errorf("chunk bodies do not cover the block text")
	}
	checkShortChunks(t, chunks, cfg.MinLen)
	checkForwardMerges(t, blocks, chunks)

	again := Optimize("doc", blocks, cfg)
	if len(again) != len(chunks) {
		t.Fatalf("expected deterministic output")
	}
	for i := range again {
		if again[i].Text != chunks[i].Text || again[i].ID != chunks[i].ID {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestOptimize_ShortChapterBodyStaysInItsChapter(t *testing.T) {
	intro := "Chương này quy định chung."
	fine := strings.Repeat("Mức phạt tiền được áp dụng theo quy định. ", 4)
	root := &doctree.Node{
		Level: doctree.LevelRoot,
		Children: []*doctree.Node{
			{Level: doctree.LevelChapter, Label: "Chương I", Title: "QUY ĐỊNH CHUNG", Body: intro},
			{
				Level: doctree.LevelChapter, Label: "Chương II", Title: "XỬ LÝ VI PHẠM",
				Children: []*doctree.Node{
					{Level: doctree.LevelSection, Label: "Điều 5", Title: "Phạt tiền", Body: fine},
				},
			},
		},
	}
	blocks := Flatten(root, doctree.DocumentMetadata{})
	chunks := Optimize("d", blocks, testConfig(50, 500))

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Body != intro {
		t.Errorf("expected chapter body alone, got %q", chunks[0].Body)
	}
	if len(chunks[0].Context) != 1 || chunks[0].Context[0] != "Chương I. QUY ĐỊNH CHUNG" {
		t.Errorf("expected chapter I context, got %v", chunks[0].Context)
	}
	if !chunks[0].Orphan {
		t.Errorf("expected short first chunk with no merge target to be an orphan")
	}
	if strings.Contains(chunks[1].Body, intro) {
		t.Errorf("chapter I text leaked under %v", chunks[1].Context)
	}
	checkForwardMerges(t, blocks, chunks)
}

func TestOptimize_ShortCousinMergesBackward(t *testing.T) {
	long := strings.Repeat("Nội dung điều khoản đầy đủ. ", 4)
	root := &doctree.Node{
		Level: doctree.LevelRoot,
		Children: []*doctree.Node{
			{
				Level: doctree.LevelChapter, Label: "Chương I", Title: "Chung",
				Children: []*doctree.Node{
					{Level: doctree.LevelSection, Label: "Điều 1", Body: long},
					{Level: doctree.LevelSection, Label: "Điều 2", Body: "Ngắn."},
				},
			},
			{
				Level: doctree.LevelChapter, Label: "Chương II", Title: "Thi hành",
				Children: []*doctree.Node{
					{Level: doctree.LevelSection, Label: "Điều 3", Body: long},
				},
			},
		},
	}
	blocks := Flatten(root, doctree.DocumentMetadata{})
	chunks := Optimize("d", blocks, testConfig(50, 500))

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Body, "\nNgắn.") {
		t.Errorf("expected short article appended to its predecessor, got %q", chunks[0].Body)
	}
	if chunks[1].Body != long {
		t.Errorf("expected chapter II body untouched, got %q", chunks[1].Body)
	}
	checkForwardMerges(t, blocks, chunks)
}

func TestOptimize_SplitRemnantsReachMinLen(t *testing.T) {
	body := strings.Repeat("x", 440) + ". " + strings.Repeat("y", 100) + "."
	root := &doctree.Node{
		Level: doctree.LevelRoot,
		Children: []*doctree.Node{
			{Level: doctree.LevelSection, Label: "Điều 1", Body: body},
			{Level: doctree.LevelSection, Label: "Điều 2", Body: body},
		},
	}
	cfg := testConfig(200, 500)
	blocks := Flatten(root, doctree.DocumentMetadata{})
	chunks := Optimize("d", blocks, cfg)

	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	var got strings.Builder
	for i, c := range chunks {
		if n := RuneLen(c.Text); n < cfg.MinLen || n > cfg.MaxLen {
			t.Errorf("chunk %d: length %d outside [%d, %d]", i, n, cfg.MinLen, cfg.MaxLen)
		}
		got.WriteString(c.Body)
	}
	if stripSpace(got.String()) != stripSpace(body+body) {
		t.Errorf("split lost content")
	}
	checkShortChunks(t, chunks, cfg.MinLen)
}

func TestSplitBody_PrefersBalancedHardCutOverShortRemnant(t *testing.T) {
	body := strings.Repeat("x", 440) + ". " + strings.Repeat("y", 100) + "."
	parts := splitBody(body, 500, testConfig(200, 500))
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if RuneLen(parts[0]) != 343 || RuneLen(parts[1]) != 200 {
		t.Errorf("expected 343/200 split, got %d/%d", RuneLen(parts[0]), RuneLen(parts[1]))
	}
}

func TestInScope(t *testing.T) {
	tests := []struct {
		ctx, next []string
		want      bool
	}{
		{[]string{}, []string{"Chương I"}, true},
		{[]string{"Chương I"}, []string{"Chương I", "Điều 1"}, true},
		{[]string{"Chương I"}, []string{"Chương II"}, true},
		{[]string{"Chương I"}, []string{"Chương II", "Điều 5"}, false},
		{[]string{"Chương I", "Điều 1"}, []string{"Chương I", "Điều 2"}, true},
		{[]string{"Chương I", "Điều 1"}, []string{"Chương I", "Điều 2", "1"}, false},
		{[]string{"Chương I", "Điều 1", "1"}, []string{"Chương I", "Điều 2"}, false},
	}
	for _, tt := range tests {
		if got := inScope(tt.ctx, tt.next); got != tt.want {
			t.Errorf("inScope(%v, %v) = %v, want %v", tt.ctx, tt.next, got, tt.want)
		}
	}
}

func TestChunkIDAndRenderText(t *testing.T) {
	if got := ChunkID("abc", 7); got != "abc#0007" {
		t.Errorf("expected abc#0007, got %q", got)
	}
	if got := RenderText("", "body"); got != "body" {
		t.Errorf("expected bare body, got %q", got)
	}
	if got := RenderText("A > B", "body"); got != "A > B\nbody" {
		t.Errorf("unexpected render %q", got)
	}
}

func TestHasContent(t *testing.T) {
	if HasContent(" .;-- ") {
		t.Errorf("punctuation only should have no content")
	}
	if !HasContent("- a") || !HasContent("3.") {
		t.Errorf("letters and digits are content")
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// checkShortChunks allows at most one chunk per document under minLen.
func checkShortChunks(t *testing.T, chunks []doctree.Chunk, minLen int) {
	t.Helper()
	short := 0
	for _, c := range chunks {
		if RuneLen(c.Text) < minLen {
			short++
		}
	}
	if short > 1 {
		t.Errorf("expected at most one chunk under %d runes, got %d", minLen, short)
	}
}

// checkForwardMerges verifies that the blocks carried forward into a chunk,
// from its first block up to the block whose context it carries, only step
// into a descendant or a sibling.
func checkForwardMerges(t *testing.T, blocks []doctree.LeafBlock, chunks []doctree.Chunk) {
	t.Helper()
	for _, c := range chunks {
		recv := -1
		for s := c.SourceRange.First; s <= c.SourceRange.Last; s++ {
			if slices.Equal(blocks[s].Context, c.Context) {
				recv = s
				break
			}
		}
		if recv < 0 {
			t.Errorf("chunk %s: no block carries context %v", c.ID, c.Context)
			continue
		}
		for s := c.SourceRange.First; s < recv; s++ {
			from, to := blocks[s].Context, blocks[s+1].Context
			descendant := len(to) >= len(from) && slices.Equal(to[:len(from)], from)
			sibling := len(from) > 0 && len(to) == len(from) && slices.Equal(to[:len(from)-1], from[:len(from)-1])
			if !descendant && !sibling {
				t.Errorf("chunk %s: block %d %v carried forward into %v", c.ID, s, from, to)
			}
		}
	}
}
