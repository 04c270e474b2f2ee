package glossary

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/storage"
)

func TestParseLines(t *testing.T) {
	text := "# tech glossary\n" +
		"machine learning\t机器学习\n" +
		"deep learning = 深度学习\r\n" +
		"big data: <b>大数据</b> &amp; more\n" +
		"\n" +
		"- **cloud computing**: 云计算\n" +
		"**blockchain:** 区块链\n" +
		"| Term | Definition |\n" +
		"|------|------------|\n" +
		"| data mining | 数据挖掘 |\n" +
		"no separator here\n" +
		"empty definition:\t\n" +
		"\t孤立释义\n"

	want := []models.Term{
		{Word: "machine learning", Definition: "机器学习"},
		{Word: "deep learning", Definition: "深度学习"},
		{Word: "big data", Definition: "大数据 & more"},
		{Word: "cloud computing", Definition: "云计算"},
		{Word: "blockchain", Definition: "区块链"},
		{Word: "data mining", Definition: "数据挖掘"},
	}
	if diff := cmp.Diff(want, ParseLines(text)); diff != "" {
		t.Errorf("ParseLines mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLines_EarliestSeparatorWins(t *testing.T) {
	tests := []struct {
		line string
		want models.Term
	}{
		{"ratio: parts = whole", models.Term{Word: "ratio", Definition: "parts = whole"}},
		{"equals = sign: symbol", models.Term{Word: "equals", Definition: "sign: symbol"}},
		{"key: value\tnote", models.Term{Word: "key", Definition: "value note"}},
		{"tab first\tthen: colon", models.Term{Word: "tab first", Definition: "then: colon"}},
	}
	for _, tt := range tests {
		got := ParseLines(tt.line)
		if diff := cmp.Diff([]models.Term{tt.want}, got); diff != "" {
			t.Errorf("ParseLines(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestCleanDefinition(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<div class=\"d\">first</div><div>second</div>", "first second"},
		{"a &lt;b&gt; c", "a <b> c"},
		{"  spaced \n\t out  ", "spaced out"},
		{"<br/>", ""},
	}
	for _, tt := range tests {
		if got := CleanDefinition(tt.in); got != tt.want {
			t.Errorf("CleanDefinition(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClean(t *testing.T) {
	kept, dropped := Clean([]models.Term{
		{Word: "  big   data ", Definition: "<p>大数据</p>"},
		{Word: "", Definition: "orphan"},
		{Word: "blank", Definition: "<br>"},
	})
	want := []models.Term{{Word: "big data", Definition: "大数据"}}
	if diff := cmp.Diff(want, kept); diff != "" {
		t.Errorf("kept mismatch (-want +got):\n%s", diff)
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}

func TestParse_csv(t *testing.T) {
	content := []byte("\xef\xbb\xbfword,definition\n" +
		"neural network,\"神经网络, 一种数学模型\"\n" +
		"quantum computing,量子计算,extra column\n" +
		"lonely\n" +
		",no word\n")
	got, err := Parse(content, ".csv")
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Term{
		{Word: "neural network", Definition: "神经网络, 一种数学模型"},
		{Word: "quantum computing", Definition: "量子计算"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Term")
	f.SetCellValue("Sheet1", "B1", "Definition")
	f.SetCellValue("Sheet1", "A2", "virtual reality")
	f.SetCellValue("Sheet1", "B2", "虚拟现实")
	if _, err := f.NewSheet("More"); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue("More", "A1", "augmented reality")
	f.SetCellValue("More", "B1", "增强现实")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := Parse(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Term{
		{Word: "virtual reality", Definition: "虚拟现实"},
		{Word: "augmented reality", Definition: "增强现实"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("excel mismatch (-want +got):\n%s", diff)
	}
}

// minimalDocx builds a .docx whose body has one paragraph per entry.
func minimalDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body bytes.Buffer
	for _, p := range paragraphs {
		body.WriteString(`<w:p w:rsidR="00AB"><w:pPr><w:pStyle w:val="Normal"/></w:pPr><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParse_docx(t *testing.T) {
	content := minimalDocx(t, "algorithm: 算法", "", "accuracy = 准确率", "Heading without entry")
	got, err := Parse(content, ".docx")
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Term{
		{Word: "algorithm", Definition: "算法"},
		{Word: "accuracy", Definition: "准确率"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("docx mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_docxTabRuns(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	fw.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>training</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>训练</w:t></w:r></w:p></w:body></w:document>`))
	w.Close()

	got, err := Parse(buf.Bytes(), ".docx")
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Term{{Word: "training", Definition: "训练"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("docx tab mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_errors(t *testing.T) {
	if _, err := Parse([]byte("x"), ".mdx"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := Parse([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for invalid docx")
	}
	if _, err := Parse([]byte("not a pdf"), ".pdf"); err == nil {
		t.Error("expected error for invalid pdf")
	}
	if _, err := Parse([]byte("not a workbook"), ".xlsx"); err == nil {
		t.Error("expected error for invalid xlsx")
	}
}

func TestSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"terms.TSV":    true,
		"terms.csv":    true,
		"a/b/c.docx":   true,
		"oxford.mdx":   false,
		"no-extension": false,
	} {
		if got := Supported(path); got != want {
			t.Errorf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestSampleTerms(t *testing.T) {
	terms := SampleTerms()
	if len(terms) != 20 {
		t.Errorf("len = %d, want 20", len(terms))
	}
	seen := make(map[string]bool)
	for _, term := range terms {
		if term.Word == "" || term.Definition == "" {
			t.Errorf("incomplete sample term %+v", term)
		}
		if seen[term.Word] {
			t.Errorf("duplicate sample word %q", term.Word)
		}
		seen[term.Word] = true
	}
}

func newStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "terms.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestImporter_ImportFile(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	im := NewImporter(store, WithBatchSize(2))

	path := filepath.Join(t.TempDir(), "terms.tsv")
	content := "machine learning\t机器学习\ndeep learning\t深度学习\nbig data\t大数据\nmachine learning\t重复\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	res, err := im.ImportFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Parsed != 4 || res.Inserted != 3 || res.Duplicates != 1 {
		t.Errorf("result = %+v, want parsed 4, inserted 3, duplicates 1", res)
	}

	term, err := store.GetTerm(ctx, "machine learning")
	if err != nil {
		t.Fatal(err)
	}
	if term.Definition != "机器学习" {
		t.Errorf("first definition must win, got %q", term.Definition)
	}

	again, err := im.ImportFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Inserted != 0 {
		t.Errorf("re-import inserted %d, want 0", again.Inserted)
	}
}

func TestImporter_ImportFileErrors(t *testing.T) {
	im := NewImporter(newStore(t))
	if _, err := im.ImportFile(context.Background(), "dict.mdx"); err == nil {
		t.Error("expected error for unsupported file")
	}
	if _, err := im.ImportFile(context.Background(), "/nonexistent/terms.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImporter_ImportSample(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	res, err := NewImporter(store).ImportSample(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != len(SampleTerms()) {
		t.Errorf("inserted %d, want %d", res.Inserted, len(SampleTerms()))
	}
	n, err := store.CountTerms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(SampleTerms())) {
		t.Errorf("stored %d terms, want %d", n, len(SampleTerms()))
	}
}

func TestImporter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewImporter(newStore(t)).ImportTerms(ctx, "test", SampleTerms()); err == nil {
		t.Error("expected error for canceled context")
	}
}
