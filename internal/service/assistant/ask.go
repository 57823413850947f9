package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"ratemate/internal/models"
)

// AskRequest is one question submitted for a session.
type AskRequest struct {
	SessionID string
	Question  string
	ImageData string
	// ClientHistory overrides the stored history for this turn when
	// HistoryProvided is set. A provided empty history is still an override:
	// the turn runs with no prior context.
	ClientHistory   []models.Turn
	HistoryProvided bool
}

// Ask runs the full answer pipeline. The returned answer is always non-empty
// on a nil error: completion failures degrade to an in-band apologetic
// answer rather than surfacing as request errors.
func (s *Service) Ask(ctx context.Context, req AskRequest) (string, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" && req.ImageData == "" {
		return "", ErrEmptyQuestion
	}

	prior, err := s.workingHistory(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("load history failed, continuing without it")
		prior = nil
	}

	// An image-only question has no text to embed; skip retrieval and let
	// the model answer from the image alone.
	var contextBlock string
	var stats models.CorpusStats
	if question != "" {
		if s.embedder == nil {
			return "", fmt.Errorf("%w: client not initialized", ErrEmbedding)
		}
		vector, err := s.embedder.Embed(ctx, question)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEmbedding, err)
		}
		items := s.retriever.Assemble(ctx, vector)
		contextBlock = s.retriever.BuildContextBlock(items)
	}
	if s.retriever != nil {
		stats = s.retriever.Stats(ctx)
	}

	messages := s.buildPrompt(req.Question, req.ImageData, prior, contextBlock, stats)
	answer := s.complete(ctx, messages)

	if err := s.store.Append(ctx, req.SessionID,
		models.Turn{Role: models.RoleUser, Content: req.Question},
		models.Turn{Role: models.RoleAssistant, Content: answer},
	); err != nil {
		// The user already has the answer; losing this turn from history is
		// acceptable.
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("persist turns failed")
	}
	return answer, nil
}

// workingHistory picks the turn source for this request and drops a trailing
// user turn duplicating the in-flight question: history covers prior turns
// only, the current question is represented solely by the final structured
// message.
func (s *Service) workingHistory(ctx context.Context, req AskRequest) ([]models.Turn, error) {
	turns := req.ClientHistory
	if !req.HistoryProvided {
		stored, err := s.store.Get(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}
		turns = stored
	}
	if n := len(turns); n > 0 && turns[n-1].Role == models.RoleUser && turns[n-1].Content == req.Question {
		turns = turns[:n-1]
	}
	return turns, nil
}

func (s *Service) complete(ctx context.Context, messages []models.PromptMessage) string {
	if s.chat == nil {
		return "AI client not initialized. Cannot generate AI response."
	}
	answer, err := s.chat.Generate(ctx, messages)
	if err != nil {
		log.Error().Err(err).Msg("completion failed, returning degraded answer")
		return fmt.Sprintf("I'm having trouble connecting to the AI service: %s. Please try again later.", truncateReason(err, 150))
	}
	return answer
}

func truncateReason(err error, max int) string {
	reason := err.Error()
	if len(reason) > max {
		reason = reason[:max]
	}
	return reason
}
