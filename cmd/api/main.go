package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/josinaldojr/docqa/internal/config"
	"github.com/josinaldojr/docqa/internal/db"
	"github.com/josinaldojr/docqa/internal/db/migrate"
	"github.com/josinaldojr/docqa/internal/document"
	apphttp "github.com/josinaldojr/docqa/internal/http"
	"github.com/josinaldojr/docqa/internal/llm"
	"github.com/josinaldojr/docqa/internal/metrics"
	"github.com/josinaldojr/docqa/internal/prompt"
	"github.com/josinaldojr/docqa/internal/rag"
	"github.com/josinaldojr/docqa/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.ValidateRAG(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	prompts, err := prompt.Load(cfg.PromptsFile)
	if err != nil {
		log.Fatalf("failed to load prompts: %v", err)
	}

	metrics.Register()

	library, err := document.NewLibrary(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to open upload dir: %v", err)
	}
	if err := library.Discover(); err != nil {
		log.Fatalf("failed to scan %s: %v", library.Dir(), err)
	}
	if cfg.WatchUploads {
		if err := library.Watch(ctx); err != nil {
			log.Printf("upload watcher disabled: %v", err)
		}
	}

	var store rag.VectorStore
	switch cfg.VectorStore {
	case config.StorePgvector:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to db: %v", err)
		}
		defer pool.Close()

		if err := migrate.RunMigrations(ctx, pool); err != nil {
			log.Fatalf("failed to migrate db: %v", err)
		}
		store = rag.NewPgRepository(pool)
	default:
		store = rag.NewMemoryStore()
	}

	var sessions rag.SessionStore
	switch cfg.SessionStore {
	case config.StoreRedis:
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer client.Close()
		sessions = session.NewRedisStore(client, cfg.SessionTTL)
	default:
		sessions = session.NewMemoryStore()
	}

	var gemini *llm.GeminiClient
	if cfg.LLMProvider == config.ProviderGemini || cfg.EmbeddingsProvider == config.ProviderGemini {
		gemini, err = llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:         cfg.GeminiAPIKey,
			ChatModel:      cfg.ChatModel,
			EmbeddingModel: cfg.EmbeddingModel,
			Temperature:    cfg.ChatTemperature,
		})
		if err != nil {
			log.Fatalf("failed to init Gemini client: %v", err)
		}
	}

	var chat rag.ChatModel = gemini
	if cfg.LLMProvider == config.ProviderGroq {
		chat, err = llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.ChatModel, cfg.ChatTemperature)
		if err != nil {
			log.Fatalf("failed to init Groq client: %v", err)
		}
	}

	var embeddings rag.Embedder = gemini
	if cfg.EmbeddingsProvider == config.ProviderHuggingFace {
		embeddings, err = llm.NewHFEmbedder(cfg.HFToken, cfg.HFBaseURL, cfg.EmbeddingModel)
		if err != nil {
			log.Fatalf("failed to init embeddings: %v", err)
		}
	}

	ragService := rag.NewService(library, store, sessions, embeddings, chat, rag.Options{
		Prompts: rag.Prompts{
			System:        prompts.System,
			Contextualize: prompts.Contextualize,
		},
		TopK:         cfg.TopK,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,

		EmbeddingModel: cfg.EmbeddingsProvider + "/" + cfg.EmbeddingModel,
	})

	h := apphttp.NewHandler(ragService, library, cfg.MaxUploadBytes, cfg.RequestTimeout)
	router := apphttp.NewRouter(h, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("API listening on %s (chat=%s/%s, embeddings=%s/%s, store=%s, sessions=%s)",
		srv.Addr, cfg.LLMProvider, cfg.ChatModel, cfg.EmbeddingsProvider, cfg.EmbeddingModel,
		cfg.VectorStore, cfg.SessionStore)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("API stopped")
}
