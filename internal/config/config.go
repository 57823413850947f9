package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents runtime configuration for the service.
type Config struct {
	ServerAddress string `env:"RATEMATE_ADDR" envDefault:":8090"`

	OpenAI   OpenAIConfig
	Claude   ClaudeConfig
	Gemini   GeminiConfig
	Supabase SupabaseConfig
	Corpus   CorpusConfig
	Redis    RedisConfig
	Chat     ChatConfig
}

// OpenAIConfig covers both the embeddings endpoint and the files/responses API.
type OpenAIConfig struct {
	APIKey         string `env:"OPENAI_API_KEY"`
	BaseURL        string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	Dimension      int    `env:"EMBEDDING_DIMENSION" envDefault:"1536"`
}

type ClaudeConfig struct {
	APIKey  string `env:"CLAUDE_API_KEY"`
	BaseURL string `env:"CLAUDE_BASE_URL"`
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
}

// SupabaseConfig points at the managed vector search engine.
type SupabaseConfig struct {
	URL     string `env:"SUPABASE_URL"`
	AnonKey string `env:"SUPABASE_ANON_KEY"`
}

// CorpusConfig selects the corpus backend. Driver sqlite3 or mysql enables the
// local engine; an empty driver falls through to Supabase.
type CorpusConfig struct {
	Driver string `env:"CORPUS_DB" envDefault:""`
	DSN    string `env:"CORPUS_DSN"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Username string `env:"REDIS_USERNAME"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// ChatConfig carries the completion and retrieval tuning knobs.
type ChatConfig struct {
	Provider            string        `env:"CHAT_PROVIDER" envDefault:"openai"`
	Model               string        `env:"COMPLETION_MODEL" envDefault:"gpt-4.1-mini"`
	DocumentModel       string        `env:"DOCUMENT_MODEL" envDefault:"gpt-4.1-mini"`
	MaxTokens           int           `env:"COMPLETION_MAX_TOKENS" envDefault:"500"`
	Temperature         float64       `env:"COMPLETION_TEMPERATURE" envDefault:"0.7"`
	ResultsPerTable     int           `env:"MAX_RESULTS_PER_TABLE" envDefault:"10"`
	SimilarityThreshold float64       `env:"SIMILARITY_THRESHOLD" envDefault:"0"`
	MaxContextLength    int           `env:"MAX_CONTEXT_LENGTH" envDefault:"3000"`
	HistoryCap          int           `env:"HISTORY_CAP" envDefault:"20"`
	PromptHistory       int           `env:"PROMPT_HISTORY" envDefault:"10"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"168h"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.OpenAI.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive")
	}
	if cfg.Chat.HistoryCap <= 0 {
		cfg.Chat.HistoryCap = 20
	}
	return &cfg, nil
}
