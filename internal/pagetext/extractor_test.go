package pagetext

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/entity"
)

type stubRunner struct {
	stdout []byte
	err    error
	name   string
	args   []string
}

func (s *stubRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	s.name, s.args = name, args
	return s.stdout, nil, s.err
}

const bboxDoc = `<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title></title><meta name="Producer" content="test"/></head>
<body>
<doc>
  <page width="612.000000" height="792.000000">
    <word xMin="72.000000" yMin="100.000000" xMax="130.000000" yMax="110.000000">PREPARED</word>
    <word xMin="134.000000" yMin="100.000000" xMax="150.000000" yMax="110.000000">BY:</word>
    <word xMin="72.000000" yMin="130.000000" xMax="100.000000" yMax="140.000000">JUAN</word>
    <word xMin="104.000000" yMin="130.000000" xMax="130.000000" yMax="140.000000">DELA</word>
    <word xMin="134.000000" yMin="130.000000" xMax="162.000000" yMax="140.000000">CRUZ</word>
  </page>
  <page width="612.000000" height="792.000000">
  </page>
</doc>
</body>
</html>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSplitTextPages(t *testing.T) {
	pages := SplitTextPages("BARANGAY POBLACION\r\nFY 2025\fTOTAL 1,000.00\f")
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNo)
	assert.Equal(t, "BARANGAY POBLACION\nFY 2025", pages[0].Text)
	assert.Equal(t, 2, pages[1].PageNo)
	assert.Equal(t, "TOTAL 1,000.00", pages[1].Text)

	assert.Nil(t, SplitTextPages("  \n "))
}

func TestParseBBoxHTML(t *testing.T) {
	pages, err := ParseBBoxHTML([]byte(bboxDoc))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	p := pages[0]
	assert.Equal(t, 1, p.PageNo)
	assert.Equal(t, 612.0, p.Width)
	assert.Equal(t, 792.0, p.Height)
	require.Len(t, p.Words, 5)
	assert.Equal(t, entity.BBox{X0: 72, Y0: 100, X1: 130, Y1: 110}, p.Words[0].BBox)
	assert.Equal(t, 1, p.Words[4].Page)
	assert.Equal(t, "PREPARED BY:\nJUAN DELA CRUZ", p.Text)

	assert.Equal(t, 2, pages[1].PageNo)
	assert.Empty(t, pages[1].Words)
	assert.Empty(t, pages[1].Text)
}

func TestPopplerPagesUsesRunner(t *testing.T) {
	e := NewExtractor(Config{PdfToText: "pdftotext"}, nil)
	stub := &stubRunner{stdout: []byte(bboxDoc)}
	e.runner = stub

	pages, err := e.popplerPages(context.Background(), "/tmp/plan.pdf")
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Equal(t, "pdftotext", stub.name)
	assert.Equal(t, []string{"-bbox", "-enc", "UTF-8", "/tmp/plan.pdf", "-"}, stub.args)

	stub.err = errors.New("exit status 1")
	_, err = e.popplerPages(context.Background(), "/tmp/plan.pdf")
	assert.Error(t, err)
}

func TestExtractMissingFile(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.Equal(t, common.CodePDFNotFound, common.ErrorCode(err))
}

func TestExtractTextFile(t *testing.T) {
	path := writeFile(t, "plan.txt", "page one\fpage two\fpage three")
	e := NewExtractor(Config{MaxPages: 2}, nil)

	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "text", doc.Method)
	assert.Equal(t, 3, doc.PageCount)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, "page two", doc.Pages[1].Text)
}

func TestExtractEmptyTextFile(t *testing.T) {
	path := writeFile(t, "empty.txt", "   ")
	_, err := NewExtractor(Config{}, nil).Extract(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, common.CodePDFEmpty, common.ErrorCode(err))
}

func TestExtractUnreadable(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	_, err := e.Extract(context.Background(), writeFile(t, "plan.pdf", "not a pdf at all"))
	require.Error(t, err)
	assert.Equal(t, common.CodePDFUnreadable, common.ErrorCode(err))

	_, err = e.Extract(context.Background(), writeFile(t, "plan.docx", "x"))
	require.Error(t, err)
	assert.Equal(t, common.CodePDFUnreadable, common.ErrorCode(err))
}

func TestWordsFromGlyphs(t *testing.T) {
	g := func(s string, x, y float64) pdf.Text {
		return pdf.Text{Font: "Helvetica", FontSize: 10, X: x, Y: y, W: 6, S: s}
	}
	glyphs := []pdf.Text{
		g("J", 10, 700), g("O", 16, 700), g("E", 22, 700),
		g(" ", 28, 700),
		g("D", 40, 700), g("O", 46, 700),
		// next baseline
		g("M", 10, 680), g("E", 16, 680),
		// wide gap on the same baseline
		g("X", 60, 680),
	}

	words := wordsFromGlyphs(glyphs, 4, 792)
	require.Len(t, words, 4)
	assert.Equal(t, []string{"JOE", "DO", "ME", "X"}, []string{words[0].Text, words[1].Text, words[2].Text, words[3].Text})
	assert.Equal(t, entity.BBox{X0: 10, Y0: 82, X1: 28, Y1: 92}, words[0].BBox)
	assert.Equal(t, entity.BBox{X0: 10, Y0: 102, X1: 22, Y1: 112}, words[2].BBox)
	assert.Equal(t, 4, words[3].Page)
}

func TestMergePoppler(t *testing.T) {
	native := []entity.PageInput{
		{PageNo: 1, Text: "native text", Words: []entity.PositionedWord{{Text: "native"}}},
		{PageNo: 2, DecodeError: "bad font"},
		{PageNo: 3, Text: "kept"},
	}
	bbox := []entity.PageInput{
		{PageNo: 1, Text: "poppler", Words: []entity.PositionedWord{{Text: "poppler"}}},
		{PageNo: 2, Text: "recovered", Width: 612, Height: 792, Words: []entity.PositionedWord{{Text: "recovered"}}},
		{PageNo: 3, Text: "other", Words: []entity.PositionedWord{{Text: "other"}}},
	}
	mergePoppler(native, bbox)

	assert.Equal(t, "native", native[0].Words[0].Text)
	assert.Equal(t, "recovered", native[1].Text)
	assert.Empty(t, native[1].DecodeError)
	assert.Equal(t, 612.0, native[1].Width)
	assert.Equal(t, "kept", native[2].Text)
	assert.Equal(t, "other", native[2].Words[0].Text)
	assert.True(t, missingWords([]entity.PageInput{{}, {Words: []entity.PositionedWord{{Text: "a"}}}}))
}
