package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ujjwal-07/RAG-CHAT/internal/model"
)

// memoryChunkStore is an in-memory ChunkStore for tests.
type memoryChunkStore struct {
	chunks  map[uint][]model.Chunk
	listErr error
	putErr  error
}

func newMemoryChunkStore() *memoryChunkStore {
	return &memoryChunkStore{chunks: make(map[uint][]model.Chunk)}
}

func (s *memoryChunkStore) Put(_ context.Context, chunk *model.Chunk) error {
	if s.putErr != nil {
		return s.putErr
	}
	chunk.ID = uint(len(s.chunks[chunk.DocumentID]) + 1)
	s.chunks[chunk.DocumentID] = append(s.chunks[chunk.DocumentID], *chunk)
	return nil
}

func (s *memoryChunkStore) ListByDocument(_ context.Context, documentID uint) ([]model.Chunk, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.chunks[documentID], nil
}

func storeWithChunks(t *testing.T, docID uint, embeddings ...[]float32) *memoryChunkStore {
	t.Helper()
	store := newMemoryChunkStore()
	for i, vec := range embeddings {
		chunk := &model.Chunk{DocumentID: docID, Seq: i, Content: "chunk-" + string(rune('A'+i))}
		chunk.SetEmbedding(vec)
		require.NoError(t, store.Put(context.Background(), chunk))
	}
	return store
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 2, 3}

	assert.InDelta(t, 1.0, CosineSimilarity(a, a), 1e-9, "a vector is fully similar to itself")
	assert.InDelta(t, CosineSimilarity(a, []float32{3, 2, 1}), CosineSimilarity([]float32{3, 2, 1}, a), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosineSimilarity_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestRetrieve_TopScoreAboveDefaultThreshold(t *testing.T) {
	store := storeWithChunks(t, 1,
		[]float32{1, 0, 0},
		[]float32{0, 1, 0},
		[]float32{0.9, 0.1, 0},
		[]float32{0, 0, 1},
	)
	r := NewRetriever(store, DefaultPolicy())

	result, err := r.Retrieve(context.Background(), 1, "tell me about the budget", []float32{1, 0, 0})

	require.NoError(t, err)
	assert.True(t, result.UsedContext)
	require.Len(t, result.Chunks, 3)
	assert.Equal(t, "chunk-A", result.Chunks[0].Content, "most similar chunk first")
	assert.Equal(t, "chunk-C", result.Chunks[1].Content)
	assert.Contains(t, result.Context, "chunk-A")
	assert.Contains(t, result.Context, "\n\n")
}

func TestRetrieve_ChitChatBelowDefaultThreshold(t *testing.T) {
	// Scores stay well under 0.25 for an orthogonal-ish query.
	store := storeWithChunks(t, 1,
		[]float32{1, 0, 0},
		[]float32{0.9, 0.1, 0},
	)
	r := NewRetriever(store, DefaultPolicy())

	result, err := r.Retrieve(context.Background(), 1, "hello there", []float32{0, 0, 1})

	require.NoError(t, err)
	assert.False(t, result.UsedContext)
	assert.Empty(t, result.Context)
	assert.Empty(t, result.Chunks)
}

func TestRetrieve_ContextSeekingUsesLowerThreshold(t *testing.T) {
	// Top score around 0.1: under the 0.25 default but over the 0.05 bar
	// that applies when the query mentions the uploaded artifact.
	store := storeWithChunks(t, 1, []float32{1, 0, 0})
	r := NewRetriever(store, DefaultPolicy())
	query := []float32{0.1, 0.995, 0}

	plain, err := r.Retrieve(context.Background(), 1, "what about the budget", query)
	require.NoError(t, err)
	assert.False(t, plain.UsedContext)

	seeking, err := r.Retrieve(context.Background(), 1, "what does the document say about the budget", query)
	require.NoError(t, err)
	assert.True(t, seeking.UsedContext)
}

func TestRetrieve_ThresholdIsStrict(t *testing.T) {
	// Exactly at the threshold keeps the chunk out.
	store := storeWithChunks(t, 1, []float32{1, 0})
	policy := DefaultPolicy()
	policy.DefaultThreshold = 1.0
	r := NewRetriever(store, policy)

	result, err := r.Retrieve(context.Background(), 1, "exact question", []float32{1, 0})

	require.NoError(t, err)
	assert.False(t, result.UsedContext)
}

func TestRetrieve_SummaryFallbackUsesStorageOrder(t *testing.T) {
	store := storeWithChunks(t, 1,
		[]float32{0, 1, 0, 0},
		[]float32{0, 0, 1, 0},
		[]float32{0, 0, 0, 1},
		[]float32{0, 1, 1, 0},
	)
	r := NewRetriever(store, DefaultPolicy())

	// Orthogonal query: every score is 0, nothing beats even the low bar, but
	// the query asks for a summary.
	result, err := r.Retrieve(context.Background(), 1, "please summarize this", []float32{1, 0, 0, 0})

	require.NoError(t, err)
	assert.True(t, result.UsedContext)
	require.Len(t, result.Chunks, 3)
	assert.Equal(t, "chunk-A", result.Chunks[0].Content)
	assert.Equal(t, "chunk-B", result.Chunks[1].Content)
	assert.Equal(t, "chunk-C", result.Chunks[2].Content)
}

func TestRetrieve_SummaryFallbackShortDocument(t *testing.T) {
	store := storeWithChunks(t, 1, []float32{0, 1})
	r := NewRetriever(store, DefaultPolicy())

	result, err := r.Retrieve(context.Background(), 1, "summary please", []float32{1, 0})

	require.NoError(t, err)
	assert.True(t, result.UsedContext)
	assert.Len(t, result.Chunks, 1)
}

func TestRetrieve_TieKeepsStorageOrder(t *testing.T) {
	same := []float32{1, 0}
	store := storeWithChunks(t, 1, same, same, same, same)
	r := NewRetriever(store, DefaultPolicy())

	result, err := r.Retrieve(context.Background(), 1, "question", []float32{1, 0})

	require.NoError(t, err)
	require.Len(t, result.Chunks, 3)
	assert.Equal(t, "chunk-A", result.Chunks[0].Content)
	assert.Equal(t, "chunk-B", result.Chunks[1].Content)
	assert.Equal(t, "chunk-C", result.Chunks[2].Content)
}

func TestRetrieve_DimensionMismatchFailsFast(t *testing.T) {
	store := storeWithChunks(t, 1, []float32{1, 0, 0})
	r := NewRetriever(store, DefaultPolicy())

	_, err := r.Retrieve(context.Background(), 1, "question", []float32{1, 0})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestRetrieve_NoEmbeddingDegradesToNoContext(t *testing.T) {
	store := storeWithChunks(t, 1, []float32{1, 0})
	r := NewRetriever(store, DefaultPolicy())

	result, err := r.Retrieve(context.Background(), 1, "question", nil)

	require.NoError(t, err)
	assert.False(t, result.UsedContext)
}

func TestRetrieve_EmptyDocument(t *testing.T) {
	r := NewRetriever(newMemoryChunkStore(), DefaultPolicy())

	result, err := r.Retrieve(context.Background(), 42, "question", []float32{1, 0})

	require.NoError(t, err)
	assert.False(t, result.UsedContext)
}

func TestRetrieve_StoreError(t *testing.T) {
	store := newMemoryChunkStore()
	store.listErr = errors.New("connection refused")
	r := NewRetriever(store, DefaultPolicy())

	_, err := r.Retrieve(context.Background(), 1, "question", []float32{1, 0})

	assert.Error(t, err)
}
