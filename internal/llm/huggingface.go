package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/josinaldojr/docqa/internal/rag"
)

const (
	DefaultHFBaseURL = "https://router.huggingface.co/hf-inference/models"

	hfBatchSize = 32
)

// HFEmbedder computes sentence embeddings with the Hugging Face inference
// feature-extraction pipeline.
type HFEmbedder struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

func NewHFEmbedder(token, baseURL, model string) (*HFEmbedder, error) {
	if token == "" {
		return nil, errors.New("HF_TOKEN not set")
	}
	if model == "" {
		return nil, errors.New("huggingface: model is required")
	}
	if baseURL == "" {
		baseURL = DefaultHFBaseURL
	}
	return &HFEmbedder{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		model:   model,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}, nil
}

type featureExtractionRequest struct {
	Inputs  []string       `json:"inputs"`
	Options map[string]any `json:"options,omitempty"`
}

func (h *HFEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += hfBatchSize {
		end := min(start+hfBatchSize, len(texts))
		vecs, err := h.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (h *HFEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := h.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (h *HFEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := featureExtractionRequest{
		Inputs:  texts,
		Options: map[string]any{"wait_for_model": true},
	}

	var raw json.RawMessage
	err := postJSON(ctx, h.client, "huggingface", h.baseURL+"/"+h.model+"/pipeline/feature-extraction",
		map[string]string{"Authorization": "Bearer " + h.token}, body, &raw)
	if err != nil {
		return nil, providerError("huggingface", err)
	}

	vecs, err := decodeFeatures(raw)
	if err != nil {
		return nil, providerError("huggingface", err)
	}
	if len(vecs) != len(texts) {
		return nil, providerError("huggingface", fmt.Errorf("got %d embeddings for %d inputs", len(vecs), len(texts)))
	}
	return vecs, nil
}

// decodeFeatures accepts pooled sentence embeddings ([batch][dim]) or
// token-level features ([batch][tokens][dim]), mean-pooling the latter.
func decodeFeatures(raw json.RawMessage) ([][]float32, error) {
	var pooled [][]float32
	if err := json.Unmarshal(raw, &pooled); err == nil {
		return pooled, nil
	}

	var tokens [][][]float32
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("unexpected feature-extraction payload: %w", err)
	}

	out := make([][]float32, len(tokens))
	for i, seq := range tokens {
		out[i] = meanPool(seq)
	}
	return out, nil
}

func meanPool(seq [][]float32) []float32 {
	if len(seq) == 0 {
		return nil
	}
	out := make([]float32, len(seq[0]))
	for _, tok := range seq {
		for j := range out {
			if j < len(tok) {
				out[j] += tok[j]
			}
		}
	}
	n := float32(len(seq))
	for j := range out {
		out[j] /= n
	}
	return out
}

var _ rag.Embedder = (*HFEmbedder)(nil)
