package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/josinaldojr/docqa/internal/completion"
	"github.com/josinaldojr/docqa/internal/metrics"
)

// OllamaClient runs completions on a local Ollama runtime.
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaClient(baseURL, model string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 300 * time.Second, // first call may include model load
		},
	}
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt,omitempty"`
	Raw     bool           `json:"raw,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Load sends a request without prompt, which makes Ollama load the model
// into memory and return immediately.
func (o *OllamaClient) Load(ctx context.Context) error {
	var out ollamaGenerateResponse
	err := postJSON(ctx, o.client, "ollama", o.baseURL+"/api/generate", nil,
		ollamaGenerateRequest{Model: o.model}, &out)
	if err != nil {
		return backendError(fmt.Errorf("load %s: %w", o.model, err))
	}
	return nil
}

// Generate sends prompt verbatim (raw mode) since it is already wrapped in the
// model's chat template.
func (o *OllamaClient) Generate(ctx context.Context, prompt string, opts completion.Options) (string, error) {
	options := map[string]any{
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	if opts.Seed != nil {
		options["seed"] = *opts.Seed
	}

	body := ollamaGenerateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Raw:     true,
		Stream:  false,
		Options: options,
	}

	var out ollamaGenerateResponse
	if err := postJSON(ctx, o.client, "ollama", o.baseURL+"/api/generate", nil, body, &out); err != nil {
		return "", backendError(err)
	}
	return out.Response, nil
}

func backendError(err error) error {
	metrics.ProviderErrors.WithLabelValues("ollama").Inc()
	return fmt.Errorf("%w: %w", completion.ErrBackendUnavailable, err)
}

var _ completion.Generator = (*OllamaClient)(nil)
