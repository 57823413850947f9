package assistant

import (
	"context"
	"fmt"
	"strings"

	"ratemate/internal/extract"
	"ratemate/internal/models"
)

// DefaultDocumentQuestion is used when the upload carries no question field.
const DefaultDocumentQuestion = "What is this document about?"

const documentSystemPrompt = "You are RateMate, an AI mortgage assistant. Analyze the provided document content and answer the user's question."

// AskDocument answers a question about an uploaded document. PDFs go through
// the provider-native ingestion path; Word documents are text-extracted and
// answered with a chat completion. Anything else is rejected.
func (s *Service) AskDocument(ctx context.Context, filename, contentType string, data []byte, question string) (answer, documentContent string, err error) {
	if strings.TrimSpace(question) == "" {
		question = DefaultDocumentQuestion
	}

	switch {
	case contentType == "application/pdf":
		if s.docqa == nil {
			return "", "", fmt.Errorf("%w: client not initialized", ErrDocQAUnavailable)
		}
		answer, err = s.docqa.AskDocument(ctx, filename, data, question)
		if err != nil {
			return "", "", fmt.Errorf("document QA: %w", err)
		}
		return answer, answer, nil

	case contentType == "application/msword" ||
		contentType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		text, err := extract.DocxText(data)
		if err != nil {
			return "", "", fmt.Errorf("extract document text: %w", err)
		}
		if s.chat == nil {
			return "", "", fmt.Errorf("%w: client not initialized", ErrDocQAUnavailable)
		}
		answer, err := s.chat.Generate(ctx, []models.PromptMessage{
			{Role: models.RoleSystem, Content: documentSystemPrompt},
			{Role: models.RoleUser, Content: fmt.Sprintf("Here is the document content:\n\n%s\n\nQuestion: %s", text, question)},
		})
		if err != nil {
			return "", "", fmt.Errorf("document completion: %w", err)
		}
		return answer, text, nil

	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
}
