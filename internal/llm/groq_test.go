package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/josinaldojr/docqa/internal/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGroqClientRequiresKey(t *testing.T) {
	_, err := NewGroqClient("", "", "llama", 0)
	assert.ErrorContains(t, err, "GROQ_API_KEY")
}

func TestGroqChat(t *testing.T) {
	var got chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Fourteen days."}},
			},
		})
	}))
	defer server.Close()

	c, err := NewGroqClient("gsk-test", server.URL+"/openai/v1/", "meta-llama/llama-4-scout-17b-16e-instruct", 0)
	require.NoError(t, err)

	history := []rag.Message{
		{Role: rag.RoleUser, Content: "Tell me about refunds"},
		{Role: rag.RoleAssistant, Content: "They are issued after return."},
	}
	answer, err := c.Chat(context.Background(), "system prompt", history, "How long?")
	require.NoError(t, err)
	assert.Equal(t, "Fourteen days.", answer)

	assert.Equal(t, "meta-llama/llama-4-scout-17b-16e-instruct", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, chatMessage{Role: "system", Content: "system prompt"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "Tell me about refunds"}, got.Messages[1])
	assert.Equal(t, chatMessage{Role: "assistant", Content: "They are issued after return."}, got.Messages[2])
	assert.Equal(t, chatMessage{Role: "user", Content: "How long?"}, got.Messages[3])
}

func TestGroqChatErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	c, err := NewGroqClient("bad", server.URL, "m", 0)
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "", nil, "hi")
	require.ErrorIs(t, err, rag.ErrProviderUnavailable)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "Invalid API Key", se.Message)
}

func TestGroqChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c, err := NewGroqClient("k", server.URL, "m", 0)
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "", nil, "hi")
	assert.ErrorIs(t, err, rag.ErrProviderUnavailable)
}

func TestGroqChatDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c, err := NewGroqClient("k", server.URL, "m", 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Chat(ctx, "", nil, "hi")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, rag.ErrProviderUnavailable)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", errorMessage([]byte(`{"error":{"message":"boom"}}`)))
	assert.Equal(t, "Model is loading", errorMessage([]byte(`{"error":"Model is loading"}`)))
	assert.Equal(t, "plain text", errorMessage([]byte(" plain text \n")))
}
