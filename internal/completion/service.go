// Package completion answers a single prompt with a local language model,
// without retrieval or conversation state.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const placeholder = "{prompt}"

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable wraps failures reaching the model runtime.
	ErrBackendUnavailable = errors.New("model runtime unavailable")
)

// Options bound a single generation.
type Options struct {
	MaxTokens   int
	Temperature float32
	Seed        *int
}

// Generator runs the model on an already formatted prompt.
type Generator interface {
	Load(ctx context.Context) error
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateResponse struct {
	GeneratedText string `json:"generated_text"`
}

type Service struct {
	gen      Generator
	template string
	opts     Options
}

func NewService(gen Generator, template string, opts Options) *Service {
	if !strings.Contains(template, placeholder) {
		template = placeholder
	}
	return &Service{gen: gen, template: template, opts: opts}
}

// Load asks the runtime to bring the model into memory.
func (s *Service) Load(ctx context.Context) error {
	return s.gen.Load(ctx)
}

func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}

	full := s.Format(prompt)
	out, err := s.gen.Generate(ctx, full, s.opts)
	if err != nil {
		return nil, err
	}

	return &GenerateResponse{GeneratedText: stripEcho(out, full)}, nil
}

// Format places prompt into the completion template.
func (s *Service) Format(prompt string) string {
	return strings.ReplaceAll(s.template, placeholder, prompt)
}

// stripEcho removes every copy of the constructed prompt from out. Removal can
// join two fragments into a fresh copy, so it repeats until none is left.
func stripEcho(out, prompt string) string {
	if prompt == "" {
		return strings.TrimSpace(out)
	}
	for strings.Contains(out, prompt) {
		out = strings.ReplaceAll(out, prompt, "")
	}
	return strings.TrimSpace(out)
}
