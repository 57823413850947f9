package assistant

import (
	"fmt"

	"ratemate/internal/models"
)

const systemPromptFormat = `You are RateMate, an AI Assistant. Provide concise, helpful answers about mortgage topics.
Users may ask questions about mortgage rates, loan types, refinancing, and other related subjects.
If an image is provided, consider its content in your response if relevant.
Be friendly and professional.
Relevant context from database: Posts: %d, Comments: %d, Attachments: %d`

// buildPrompt constructs the full message list: persona system message with
// live corpus statistics, the trailing history window, the optional context
// system message, and the final user message carrying text and image.
func (s *Service) buildPrompt(question, imageData string, prior []models.Turn, contextBlock string, stats models.CorpusStats) []models.PromptMessage {
	messages := []models.PromptMessage{{
		Role:    models.RoleSystem,
		Content: fmt.Sprintf(systemPromptFormat, stats.Posts, stats.Comments, stats.Attachments),
	}}

	window := s.cfg.PromptHistory
	if window > 0 && len(prior) > window {
		prior = prior[len(prior)-window:]
	}
	for _, turn := range prior {
		messages = append(messages, models.PromptMessage{Role: turn.Role, Content: turn.Content})
	}

	if contextBlock != "" {
		messages = append(messages, models.PromptMessage{
			Role:    models.RoleSystem,
			Content: "Relevant information from r/firsttimehomebuyer:\n\n" + contextBlock,
		})
	}

	messages = append(messages, models.PromptMessage{
		Role:     models.RoleUser,
		Content:  question,
		ImageURL: imageData,
	})
	return messages
}
