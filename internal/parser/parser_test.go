package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	called bool
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	m.called = true
	return m.output, m.err
}

func newTestParser(runner CommandRunner) *Parser {
	if runner == nil {
		runner = &mockRunner{}
	}
	return &Parser{runner: runner, logger: testLogger()}
}

// createTestDOCX builds a minimal valid DOCX archive in memory.
func createTestDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	ct, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	doc, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("notes.txt"))
	assert.True(t, Supported("README.md"))
	assert.True(t, Supported("report.PDF"))
	assert.True(t, Supported("contract.docx"))
	assert.False(t, Supported("image.png"))
	assert.False(t, Supported("archive.tar.gz"))
	assert.False(t, Supported("noextension"))
}

func TestParse_UnsupportedType(t *testing.T) {
	p := newTestParser(nil)

	_, err := p.Parse(context.Background(), []byte("data"), "slides.pptx")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), ".pptx")
}

func TestParse_PlainText(t *testing.T) {
	p := newTestParser(nil)

	text, err := p.Parse(context.Background(), []byte("hello\nworld"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", text)
}

func TestParse_TextDropsInvalidUTF8(t *testing.T) {
	p := newTestParser(nil)

	text, err := p.Parse(context.Background(), []byte{'o', 'k', 0xff, '!'}, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "ok!", text)
}

func TestParse_MarkdownStripsSyntax(t *testing.T) {
	p := newTestParser(nil)
	source := "# Title\n\nSome **bold** and *italic* text with a [link](https://example.com).\n\n- item one\n- item two\n"

	text, err := p.Parse(context.Background(), []byte(source), "doc.md")
	require.NoError(t, err)

	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "Some bold and italic text with a link.")
	assert.Contains(t, text, "item one")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "](")
}

func TestParse_MarkdownKeepsCodeBlocks(t *testing.T) {
	p := newTestParser(nil)
	source := "Intro paragraph.\n\n```\nfunc main() {}\n```\n"

	text, err := p.Parse(context.Background(), []byte(source), "doc.md")
	require.NoError(t, err)
	assert.Contains(t, text, "func main() {}")
}

func TestParse_DOCX(t *testing.T) {
	p := newTestParser(nil)
	content := createTestDOCX(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
<w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
<w:p></w:p>
</w:body>
</w:document>`)

	text, err := p.Parse(context.Background(), content, "contract.docx")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", text)
}

func TestParse_DOCXInvalidArchive(t *testing.T) {
	p := newTestParser(nil)

	_, err := p.Parse(context.Background(), []byte("not a zip"), "broken.docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid docx archive")
}

func TestParse_PDFViaRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("Extracted page text.\n")}
	p := newTestParser(runner)

	text, err := p.Parse(context.Background(), []byte("%PDF-1.4 fake"), "report.pdf")
	require.NoError(t, err)
	assert.True(t, runner.called)
	assert.Equal(t, "Extracted page text.\n", text)
}

func TestParse_PDFRunnerFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("exit status 1")}
	p := newTestParser(runner)

	_, err := p.Parse(context.Background(), []byte("%PDF-1.4 fake"), "report.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
}
