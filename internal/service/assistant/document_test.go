package assistant

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"ratemate/internal/history"
	"ratemate/internal/models"
)

type fakeDocQA struct {
	answer    string
	err       error
	filename  string
	questions []string
}

func (f *fakeDocQA) AskDocument(_ context.Context, filename string, _ []byte, question string) (string, error) {
	f.filename = filename
	f.questions = append(f.questions, question)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func docxPayload(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	part, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document part: %v", err)
	}
	if _, err := part.Write([]byte(body)); err != nil {
		t.Fatalf("write document part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestAskDocumentPDFUsesProvider(t *testing.T) {
	docqa := &fakeDocQA{answer: "It is a loan estimate."}
	svc := NewService(history.NewMemoryStore(20), &fakeRetriever{}, nil, nil, docqa, chatConfig())

	answer, content, err := svc.AskDocument(context.Background(), "estimate.pdf", "application/pdf", []byte("%PDF-1.7"), "what is this?")
	if err != nil {
		t.Fatalf("ask document: %v", err)
	}
	if answer != "It is a loan estimate." || content != answer {
		t.Fatalf("unexpected result: answer=%q content=%q", answer, content)
	}
	if docqa.filename != "estimate.pdf" {
		t.Fatalf("filename not forwarded: %q", docqa.filename)
	}
}

func TestAskDocumentDefaultsQuestion(t *testing.T) {
	docqa := &fakeDocQA{answer: "summary"}
	svc := NewService(history.NewMemoryStore(20), &fakeRetriever{}, nil, nil, docqa, chatConfig())

	if _, _, err := svc.AskDocument(context.Background(), "a.pdf", "application/pdf", nil, "   "); err != nil {
		t.Fatalf("ask document: %v", err)
	}
	if len(docqa.questions) != 1 || docqa.questions[0] != DefaultDocumentQuestion {
		t.Fatalf("default question not applied: %v", docqa.questions)
	}
}

func TestAskDocumentPDFWithoutProvider(t *testing.T) {
	svc := NewService(history.NewMemoryStore(20), &fakeRetriever{}, nil, nil, nil, chatConfig())
	_, _, err := svc.AskDocument(context.Background(), "a.pdf", "application/pdf", nil, "q")
	if !errors.Is(err, ErrDocQAUnavailable) {
		t.Fatalf("expected ErrDocQAUnavailable, got %v", err)
	}
}

func TestAskDocumentDocxExtractsAndCompletes(t *testing.T) {
	chat := &fakeCompleter{answer: "It covers closing costs."}
	svc := NewService(history.NewMemoryStore(20), &fakeRetriever{}, nil, chat, nil, chatConfig())

	data := docxPayload(t, `<w:document><w:body><w:p><w:r><w:t>Closing costs explained.</w:t></w:r></w:p></w:body></w:document>`)
	answer, content, err := svc.AskDocument(context.Background(), "costs.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", data, "what does it cover?")
	if err != nil {
		t.Fatalf("ask document: %v", err)
	}
	if answer != "It covers closing costs." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if content != "Closing costs explained." {
		t.Fatalf("unexpected extracted content %q", content)
	}

	if len(chat.messages) != 2 {
		t.Fatalf("expected 2 prompt messages, got %d", len(chat.messages))
	}
	if chat.messages[0].Role != models.RoleSystem {
		t.Fatalf("expected system message first: %+v", chat.messages[0])
	}
	user := chat.messages[1]
	if !strings.Contains(user.Content, "Closing costs explained.") || !strings.Contains(user.Content, "Question: what does it cover?") {
		t.Fatalf("document prompt malformed: %q", user.Content)
	}
}

func TestAskDocumentRejectsUnsupportedType(t *testing.T) {
	svc := NewService(history.NewMemoryStore(20), &fakeRetriever{}, nil, &fakeCompleter{}, &fakeDocQA{}, chatConfig())
	_, _, err := svc.AskDocument(context.Background(), "notes.txt", "text/plain", []byte("hi"), "q")
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
}
