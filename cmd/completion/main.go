package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/josinaldojr/docqa/internal/completion"
	"github.com/josinaldojr/docqa/internal/config"
	apphttp "github.com/josinaldojr/docqa/internal/http"
	"github.com/josinaldojr/docqa/internal/llm"
	"github.com/josinaldojr/docqa/internal/metrics"
	"github.com/josinaldojr/docqa/internal/prompt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.ValidateCompletion(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	prompts, err := prompt.Load(cfg.PromptsFile)
	if err != nil {
		log.Fatalf("failed to load prompts: %v", err)
	}

	metrics.Register()

	ollama := llm.NewOllamaClient(cfg.OllamaURL, cfg.CompletionModel)
	svc := completion.NewService(ollama, prompts.Completion, completion.Options{
		MaxTokens:   cfg.CompletionMaxTokens,
		Temperature: cfg.CompletionTemperature,
		Seed:        cfg.CompletionSeed,
	})

	log.Printf("loading %s from %s", cfg.CompletionModel, cfg.OllamaURL)
	loadCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	err = svc.Load(loadCtx)
	cancel()
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}

	h := apphttp.NewCompletionHandler(svc, cfg.RequestTimeout)
	router := apphttp.NewCompletionRouter(h, cfg.CompletionAllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.CompletionPort,
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

	log.Printf("completion service listening on %s (model=%s)", srv.Addr, cfg.CompletionModel)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("completion service stopped")
}
