package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEngine embeds text as [len, vowels] and counts calls.
type countingEngine struct {
	calls  int
	embeds int
}

func (e *countingEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (e *countingEngine) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		e.embeds++
		out[i] = []float32{float32(len(t)), float32(strings.Count(t, "a"))}
	}
	return out, nil
}

func (e *countingEngine) Name() string { return "counting" }

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 1}))
	assert.Zero(t, Cosine(nil, nil))
}

func TestCached_ServesHitsFromSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")
	inner := &countingEngine{}

	c, err := NewCached(inner, path)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := c.EmbedBatch(ctx, []string{"banana", "cap"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{6, 3}, {3, 1}}, first)
	assert.Equal(t, 2, inner.embeds)

	second, err := c.EmbedBatch(ctx, []string{"cap", "fees", "banana"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{3, 1}, {4, 0}, {6, 3}}, second)
	assert.Equal(t, 3, inner.embeds, "only the miss is embedded")
	require.NoError(t, c.Close())

	// Reopening keeps the vectors.
	reopened, err := NewCached(inner, path)
	require.NoError(t, err)
	defer reopened.Close()
	v, err := reopened.Embed(ctx, "fees")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 0}, v)
	assert.Equal(t, 3, inner.embeds)
	assert.Equal(t, "counting", reopened.Name())
}

func TestVectorEncoding(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-7}
	out, err := decodeVector(encodeVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = decodeVector([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestOpenAIEngine_EmbedBatchOrdersByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var req openaiEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"a", "b"}, req.Input)
		json.NewEncoder(w).Encode(openaiEmbeddingResponse{Data: []openaiEmbedding{
			{Index: 1, Embedding: []float32{0, 1}},
			{Index: 0, Embedding: []float32{1, 0}},
		}})
	}))
	defer server.Close()

	e := &OpenAIEngine{apiKey: "k", model: "m", baseURL: server.URL, client: server.Client()}
	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestOpenAIEngine_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("nope"))
	}))
	defer server.Close()

	e := &OpenAIEngine{apiKey: "k", model: "m", baseURL: server.URL, client: server.Client()}
	_, err := e.Embed(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "bogus"})
	require.Error(t, err)
}
