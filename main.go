package main

import (
	"context"
	"errors"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ratemate/internal/api"
	"ratemate/internal/config"
	"ratemate/internal/history"
	"ratemate/internal/provider/chat"
	"ratemate/internal/provider/docqa"
	"ratemate/internal/provider/embedding"
	"ratemate/internal/retrieval"
	"ratemate/internal/search"
	"ratemate/internal/service/assistant"
	"ratemate/internal/session"
	"ratemate/internal/storage"
)

func main() {
	_ = godotenv.Load()
	if gin.Mode() != gin.ReleaseMode {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	store := newHistoryStore(cfg)
	engine := newSearchEngine(cfg)
	assembler := retrieval.NewAssembler(engine,
		cfg.Chat.SimilarityThreshold,
		cfg.Chat.ResultsPerTable,
		cfg.Chat.MaxContextLength,
	)

	// Providers degrade to nil when their credentials are absent; affected
	// requests fail per call instead of the process refusing to boot.
	var embedder assistant.Embedder
	if client, err := embedding.NewClient(embedding.Config{
		BaseURL:   cfg.OpenAI.BaseURL,
		APIKey:    cfg.OpenAI.APIKey,
		Model:     cfg.OpenAI.EmbeddingModel,
		Dimension: cfg.OpenAI.Dimension,
	}); err != nil {
		log.Warn().Err(err).Msg("embedding client unavailable, questions will fail")
	} else {
		embedder = client
	}

	var completer assistant.Completer
	if client, err := chat.NewClient(context.Background(), cfg); err != nil {
		if errors.Is(err, chat.ErrNotConfigured) {
			log.Warn().Str("provider", cfg.Chat.Provider).Msg("chat client unavailable, answers will be degraded")
		} else {
			log.Fatal().Err(err).Msg("init chat client")
		}
	} else {
		completer = client
	}

	var documents assistant.DocumentAnswerer
	if client, err := docqa.NewClient(docqa.Config{
		BaseURL: cfg.OpenAI.BaseURL,
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.Chat.DocumentModel,
	}); err != nil {
		log.Warn().Err(err).Msg("document QA client unavailable")
	} else {
		documents = client
	}

	service := assistant.NewService(store, assembler, embedder, completer, documents, cfg.Chat)
	sessions := session.NewResolver(cfg.Chat.SessionTTL)
	handler := api.NewHandler(service, sessions)

	router := gin.Default()
	handler.RegisterRoutes(router)

	if err := router.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newHistoryStore(cfg *config.Config) history.Store {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("using in-memory conversation store; history is lost on restart")
		return history.NewMemoryStore(cfg.Chat.HistoryCap)
	}
	store, err := history.NewRedisStore(cfg.Redis, cfg.Chat.HistoryCap, cfg.Chat.SessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect conversation store")
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis conversation store")
	return store
}

func newSearchEngine(cfg *config.Config) retrieval.Engine {
	if cfg.Corpus.Driver != "" {
		db, err := storage.Open(cfg.Corpus.Driver, cfg.Corpus.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open corpus database")
		}
		if err := storage.Migrate(db, cfg.Corpus.Driver); err != nil {
			log.Fatal().Err(err).Msg("migrate corpus database")
		}
		log.Info().Str("driver", cfg.Corpus.Driver).Msg("using local corpus engine")
		return search.NewLocal(db)
	}
	engine, err := search.NewSupabase(cfg.Supabase.URL, cfg.Supabase.AnonKey)
	if err != nil {
		log.Warn().Err(err).Msg("vector search unavailable, answers will lack corpus context")
		return nil
	}
	log.Info().Msg("using supabase vector search engine")
	return engine
}
