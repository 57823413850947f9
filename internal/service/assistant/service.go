package assistant

import (
	"context"
	"errors"

	"ratemate/internal/config"
	"ratemate/internal/history"
	"ratemate/internal/models"
)

var (
	// ErrEmptyQuestion rejects requests with no question text and no image.
	ErrEmptyQuestion = errors.New("question cannot be empty if no image is provided")
	// ErrEmbedding marks a failed or unavailable query embedding; no context
	// can be retrieved without one, so the request aborts.
	ErrEmbedding = errors.New("embedding error")
	// ErrUnsupportedFileType rejects document uploads outside PDF/DOC/DOCX.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrDocQAUnavailable marks a document request that needs a provider
	// capability missing at startup.
	ErrDocQAUnavailable = errors.New("document QA not available")
)

// Embedder converts question text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Completer generates text from an ordered prompt.
type Completer interface {
	Generate(ctx context.Context, messages []models.PromptMessage) (string, error)
}

// DocumentAnswerer answers a question against an uploaded document through
// the provider's native ingestion path.
type DocumentAnswerer interface {
	AskDocument(ctx context.Context, filename string, data []byte, question string) (string, error)
}

// Retriever assembles corpus context for a query vector.
type Retriever interface {
	Assemble(ctx context.Context, vector []float64) []models.RetrievedContext
	Stats(ctx context.Context) models.CorpusStats
	BuildContextBlock(items []models.RetrievedContext) string
}

// Service orchestrates the answer pipeline: validate, embed, retrieve, build
// the prompt, complete, persist. Providers may be nil when their credentials
// were absent at startup; affected paths degrade per call instead of
// crashing the process.
type Service struct {
	store     history.Store
	retriever Retriever
	embedder  Embedder
	chat      Completer
	docqa     DocumentAnswerer
	cfg       config.ChatConfig
}

// NewService wires the pipeline dependencies.
func NewService(store history.Store, retriever Retriever, embedder Embedder, chat Completer, docqa DocumentAnswerer, cfg config.ChatConfig) *Service {
	return &Service{
		store:     store,
		retriever: retriever,
		embedder:  embedder,
		chat:      chat,
		docqa:     docqa,
		cfg:       cfg,
	}
}

// Stats reports live corpus record counts, zero-valued when no search engine
// is configured.
func (s *Service) Stats(ctx context.Context) models.CorpusStats {
	if s.retriever == nil {
		return models.CorpusStats{}
	}
	return s.retriever.Stats(ctx)
}
