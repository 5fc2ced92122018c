// Package prompt holds the prompt templates of both services and loads
// optional overrides from a YAML file.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ContextPlaceholder = "{context}"
	PromptPlaceholder  = "{prompt}"
)

const defaultSystem = `You are an assistant for question-answering over a document the user uploaded.
Use only the following pieces of retrieved context to answer the question.
If the answer is not in the context, say that you don't know; do not make anything up.
Keep the answer concise and quote figures exactly as they appear.

{context}`

const defaultContextualize = `Given a chat history and the latest user question, which might reference context in the chat history, formulate a standalone question which can be understood without the chat history. Do NOT answer the question, just reformulate it if needed and otherwise return it as is.`

const defaultCompletion = `<|start_header_id|>system<|end_header_id|>

You are a helpful assistant.<|eot_id|><|start_header_id|>user<|end_header_id|>

{prompt}<|eot_id|><|start_header_id|>assistant<|end_header_id|>

`

type Set struct {
	System        string `yaml:"system"`
	Contextualize string `yaml:"contextualize"`
	Completion    string `yaml:"completion"`
}

func Default() Set {
	return Set{
		System:        defaultSystem,
		Contextualize: defaultContextualize,
		Completion:    defaultCompletion,
	}
}

// Load returns the defaults overlaid with the non-empty fields of the YAML file
// at path. An empty path returns the defaults.
func Load(path string) (Set, error) {
	set := Default()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read prompts file: %w", err)
	}

	var override Set
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Set{}, fmt.Errorf("parse prompts file %s: %w", path, err)
	}

	if strings.TrimSpace(override.System) != "" {
		set.System = override.System
	}
	if strings.TrimSpace(override.Contextualize) != "" {
		set.Contextualize = override.Contextualize
	}
	if strings.TrimSpace(override.Completion) != "" {
		set.Completion = override.Completion
	}

	if err := set.Validate(); err != nil {
		return Set{}, fmt.Errorf("prompts file %s: %w", path, err)
	}
	return set, nil
}

func (s Set) Validate() error {
	if !strings.Contains(s.System, ContextPlaceholder) {
		return fmt.Errorf("system prompt must contain %s", ContextPlaceholder)
	}
	if !strings.Contains(s.Completion, PromptPlaceholder) {
		return fmt.Errorf("completion template must contain %s", PromptPlaceholder)
	}
	return nil
}
