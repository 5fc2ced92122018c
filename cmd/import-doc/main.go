package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/josinaldojr/docqa/internal/config"
	"github.com/josinaldojr/docqa/internal/db"
	"github.com/josinaldojr/docqa/internal/db/migrate"
	"github.com/josinaldojr/docqa/internal/document"
	"github.com/josinaldojr/docqa/internal/llm"
	"github.com/josinaldojr/docqa/internal/rag"
	"github.com/josinaldojr/docqa/internal/session"
)

func main() {
	pathFlag := flag.String("path", "", "arquivo ou diretório local (.pdf/.html/.txt/.md)")
	urlFlag := flag.String("url", "", "baixa o documento para UPLOAD_DIR antes de indexar")
	flag.Parse()

	if *pathFlag == "" && *urlFlag == "" {
		log.Fatal("use --path ou --url")
	}

	ctx := context.Background()
	cfg := config.Load()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("erro ao conectar no banco: %v", err)
	}
	defer pool.Close()

	if err := migrate.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("erro na migração: %v", err)
	}
	repo := rag.NewPgRepository(pool)

	embeddings, err := newEmbedder(ctx, cfg)
	if err != nil {
		log.Fatalf("erro ao iniciar embeddings: %v", err)
	}

	library, err := document.NewLibrary(cfg.UploadDir)
	if err != nil {
		log.Fatalf("erro no diretório de upload: %v", err)
	}

	// Only indexing is used here, so no chat model is needed.
	svc := rag.NewService(library, repo, session.NewMemoryStore(), embeddings, nil, rag.Options{
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		EmbeddingModel: cfg.EmbeddingsProvider + "/" + cfg.EmbeddingModel,
	})

	var docs []rag.Document

	if *urlFlag != "" {
		doc, err := download(ctx, library, *urlFlag)
		if err != nil {
			log.Fatalf("erro baixando %s: %v", *urlFlag, err)
		}
		docs = append(docs, doc)
	}

	if *pathFlag != "" {
		found, err := collect(*pathFlag)
		if err != nil {
			log.Fatalf("erro lendo %s: %v", *pathFlag, err)
		}
		docs = append(docs, found...)
	}

	failed := 0
	for _, doc := range docs {
		id, err := svc.Index(ctx, doc)
		if err != nil {
			failed++
			log.Printf("❌ %s: %v", doc.Name, err)
			continue
		}
		log.Printf("✅ %s indexado id=%s", doc.Name, id)
	}

	if failed > 0 {
		log.Fatalf("%d de %d documentos falharam", failed, len(docs))
	}
	log.Println("✅ Importação concluída.")
}

func newEmbedder(ctx context.Context, cfg *config.Config) (rag.Embedder, error) {
	switch cfg.EmbeddingsProvider {
	case config.ProviderHuggingFace:
		return llm.NewHFEmbedder(cfg.HFToken, cfg.HFBaseURL, cfg.EmbeddingModel)
	case config.ProviderGemini:
		return llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:         cfg.GeminiAPIKey,
			EmbeddingModel: cfg.EmbeddingModel,
		})
	default:
		return nil, fmt.Errorf("unknown EMBEDDINGS_PROVIDER %q", cfg.EmbeddingsProvider)
	}
}

// collect returns root itself or every supported file below it.
func collect(root string) ([]rag.Document, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []rag.Document{{Name: filepath.Base(root), Path: root, ModTime: info.ModTime()}}, nil
	}

	var docs []rag.Document
	err = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !document.Supported(p) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		docs = append(docs, rag.Document{Name: d.Name(), Path: p, ModTime: fi.ModTime()})
		return nil
	})
	return docs, err
}

func download(ctx context.Context, library *document.Library, raw string) (rag.Document, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return rag.Document{}, fmt.Errorf("url inválida: %q", raw)
	}

	name := path.Base(u.Path)
	if !document.Supported(name) {
		name = u.Host + ".html"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return rag.Document{}, err
	}

	log.Printf("Baixando %s", u)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return rag.Document{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rag.Document{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	return library.Save(name, resp.Body)
}
