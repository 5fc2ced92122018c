package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/josinaldojr/docqa/internal/rag"
	"google.golang.org/genai"
)

const geminiEmbedBatch = 100

type GeminiConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Temperature    float32

	// BaseURL overrides the API endpoint; empty uses Google's.
	BaseURL string
}

// GeminiClient serves as both chat model and embedder.
type GeminiClient struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
	temperature    float32
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client:         c,
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		temperature:    cfg.Temperature,
	}, nil
}

func (g *GeminiClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += geminiEmbedBatch {
		end := min(start+geminiEmbedBatch, len(texts))
		vecs, err := g.embed(ctx, texts[start:end], "RETRIEVAL_DOCUMENT")
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (g *GeminiClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.embed(ctx, []string{text}, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (g *GeminiClient) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		clean := normalizeWhitespace(t)
		if clean == "" {
			return nil, fmt.Errorf("%w: empty text for embedding", rag.ErrInvalidInput)
		}
		contents[i] = genai.NewContentFromText(clean, genai.RoleUser)
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, contents, &genai.EmbedContentConfig{
		TaskType: task,
	})
	if err != nil {
		return nil, providerError("gemini", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, providerError("gemini", fmt.Errorf("got %d embeddings for %d inputs", len(resp.Embeddings), len(texts)))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

func (g *GeminiClient) Chat(ctx context.Context, system string, history []rag.Message, input string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.chatModel, toContents(history, input), cfg)
	if err != nil {
		return "", providerError("gemini", err)
	}
	if resp == nil {
		return "", providerError("gemini", errors.New("empty response"))
	}

	return resp.Text(), nil
}

// toContents maps the conversation onto Gemini's two roles.
func toContents(history []rag.Message, input string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == rag.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(input, genai.RoleUser))
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var (
	_ rag.Embedder  = (*GeminiClient)(nil)
	_ rag.ChatModel = (*GeminiClient)(nil)
)
