package extract

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildDocx(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		part, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := part.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestDocxTextJoinsRunsAndParagraphs(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": `<w:document><w:body>` +
			`<w:p><w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Second</w:t><w:br/><w:t>line.</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})
	text, err := DocxText(data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "First paragraph.\nSecond\nline."
	if text != want {
		t.Fatalf("unexpected text %q, want %q", text, want)
	}
}

func TestDocxTextIgnoresNonTextContent(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": `<w:document><w:body>` +
			`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>visible</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})
	text, err := DocxText(data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "visible" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestDocxTextMissingDocumentPart(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/styles.xml": `<w:styles/>`,
	})
	if _, err := DocxText(data); err == nil {
		t.Fatalf("expected error for zip without word/document.xml")
	}
}

func TestDocxTextNotAnArchive(t *testing.T) {
	if _, err := DocxText([]byte("plain text, not a zip")); err == nil {
		t.Fatalf("expected error for non-zip payload")
	}
}
