package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/josinaldojr/docqa/internal/metrics"
	"github.com/josinaldojr/docqa/internal/rag"
)

const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient talks to Groq's OpenAI-compatible chat completions endpoint.
type GroqClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float32
	client      *http.Client
}

func NewGroqClient(apiKey, baseURL, model string, temperature float32) (*GroqClient, error) {
	if apiKey == "" {
		return nil, errors.New("GROQ_API_KEY not set")
	}
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	if model == "" {
		return nil, errors.New("groq: model is required")
	}
	return &GroqClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: defaultHTTPTimeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *GroqClient) Chat(ctx context.Context, system string, history []rag.Message, input string) (string, error) {
	msgs := make([]chatMessage, 0, len(history)+2)
	if system != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: system})
	}
	for _, m := range history {
		msgs = append(msgs, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: input})

	body := chatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: g.temperature,
	}

	var out chatCompletionResponse
	err := postJSON(ctx, g.client, "groq", g.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + g.apiKey}, body, &out)
	if err != nil {
		return "", providerError("groq", err)
	}

	if len(out.Choices) == 0 {
		return "", providerError("groq", errors.New("no choices returned"))
	}
	return out.Choices[0].Message.Content, nil
}

// providerError counts the failure and marks it as a provider outage, keeping
// the cause (and any context error) reachable through errors.Is.
func providerError(provider string, err error) error {
	metrics.ProviderErrors.WithLabelValues(provider).Inc()
	return fmt.Errorf("%w: %s: %w", rag.ErrProviderUnavailable, provider, err)
}

var _ rag.ChatModel = (*GroqClient)(nil)
