package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/josinaldojr/docqa/internal/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHFEmbedDocumentsBatches(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/sentence-transformers/all-MiniLM-L6-v2/pipeline/feature-extraction", r.URL.Path)
		assert.Equal(t, "Bearer hf-test", r.Header.Get("Authorization"))

		var req featureExtractionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.LessOrEqual(t, len(req.Inputs), hfBatchSize)

		out := make([][]float32, len(req.Inputs))
		for i, in := range req.Inputs {
			out[i] = []float32{float32(len(in)), 1}
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	e, err := NewHFEmbedder("hf-test", server.URL, "sentence-transformers/all-MiniLM-L6-v2")
	require.NoError(t, err)

	texts := make([]string, hfBatchSize+5)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %02d", i)
	}

	vecs, err := e.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vecs, len(texts))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []float32{8, 1}, vecs[0])
}

func TestHFEmbedQueryMeanPoolsTokenFeatures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[[1,2],[3,4]]]`))
	}))
	defer server.Close()

	e, err := NewHFEmbedder("hf", server.URL, "m")
	require.NoError(t, err)

	vec, err := e.EmbedQuery(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3}, vec)
}

func TestHFEmbedCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[1,2]]`))
	}))
	defer server.Close()

	e, err := NewHFEmbedder("hf", server.URL, "m")
	require.NoError(t, err)

	_, err = e.EmbedDocuments(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, rag.ErrProviderUnavailable)
}

func TestHFEmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer server.Close()

	e, err := NewHFEmbedder("hf", server.URL, "m")
	require.NoError(t, err)

	_, err = e.EmbedQuery(context.Background(), "x")
	require.ErrorIs(t, err, rag.ErrProviderUnavailable)
	assert.ErrorContains(t, err, "Model is currently loading")
}

func TestNewHFEmbedderRequiresToken(t *testing.T) {
	_, err := NewHFEmbedder("", "", "m")
	assert.ErrorContains(t, err, "HF_TOKEN")
}
