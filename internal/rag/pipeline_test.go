package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ujjwal-07/RAG-CHAT/internal/ai"
)

// stubEmbedder returns a fixed-dimension vector derived from the text, and
// can be told to fail on specific calls.
type stubEmbedder struct {
	dimension int
	calls     int
	failOn    map[int]bool // 1-based call numbers that fail
	failAll   bool
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.failAll || e.failOn[e.calls] {
		return nil, errors.New("embedding backend unavailable")
	}
	dim := e.dimension
	if dim == 0 {
		dim = 3
	}
	vec := make([]float32, dim)
	for i, r := range text {
		vec[i%dim] += float32(r)
	}
	return vec, nil
}

type stubGenerator struct {
	reply    string
	err      error
	received []ai.ChatMessage
}

func (g *stubGenerator) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	g.received = messages
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func newTestPipeline(store ChunkStore, embedder Embedder, generator Generator) *Pipeline {
	retriever := NewRetriever(store, DefaultPolicy())
	return NewPipeline(NewChunker(100, 20), embedder, store, retriever, NewComposer(6), generator)
}

func TestIngest_StoresAllChunks(t *testing.T) {
	store := newMemoryChunkStore()
	p := newTestPipeline(store, &stubEmbedder{}, &stubGenerator{reply: "ok"})
	text := strings.Repeat("some document text. ", 40)

	stored, err := p.Ingest(context.Background(), 1, text)

	require.NoError(t, err)
	assert.Greater(t, stored, 1)

	chunks, err := store.ListByDocument(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, chunks, stored)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Seq)
		assert.NotEmpty(t, chunk.EmbeddingVector())
	}
}

func TestIngest_SkipsChunkWhoseEmbeddingFails(t *testing.T) {
	store := newMemoryChunkStore()
	embedder := &stubEmbedder{failOn: map[int]bool{2: true}}
	p := newTestPipeline(store, embedder, &stubGenerator{reply: "ok"})
	text := strings.Repeat("some document text. ", 40)

	stored, err := p.Ingest(context.Background(), 1, text)

	require.NoError(t, err)
	chunks, listErr := store.ListByDocument(context.Background(), 1)
	require.NoError(t, listErr)
	assert.Len(t, chunks, stored)
	assert.Equal(t, embedder.calls-1, stored, "exactly one chunk skipped")

	// Seq still reflects the chunk's position in the document, so the skipped
	// chunk leaves a gap.
	seqs := make(map[int]bool)
	for _, chunk := range chunks {
		seqs[chunk.Seq] = true
	}
	assert.False(t, seqs[1], "the failed chunk is absent")
}

func TestIngest_EmptyTextFails(t *testing.T) {
	p := newTestPipeline(newMemoryChunkStore(), &stubEmbedder{}, &stubGenerator{})

	_, err := p.Ingest(context.Background(), 1, "   \n ")

	assert.ErrorIs(t, err, ErrEmptyExtraction)
}

func TestIngest_ZeroDocumentID(t *testing.T) {
	p := newTestPipeline(newMemoryChunkStore(), &stubEmbedder{}, &stubGenerator{})

	_, err := p.Ingest(context.Background(), 0, "text")

	assert.Error(t, err)
}

func TestAnswer_WithContext(t *testing.T) {
	store := newMemoryChunkStore()
	embedder := &stubEmbedder{}
	generator := &stubGenerator{reply: "The answer."}
	p := newTestPipeline(store, embedder, generator)

	_, err := p.Ingest(context.Background(), 1, "The project budget for this year is 42 units.")
	require.NoError(t, err)

	// Same text as the stored chunk scores 1.0 against itself.
	answer, err := p.Answer(context.Background(), 1, "The project budget for this year is 42 units.", nil)

	require.NoError(t, err)
	assert.Equal(t, "The answer.", answer.Text)
	assert.True(t, answer.UsedContext)
	require.NotEmpty(t, generator.received)
	assert.Contains(t, generator.received[len(generator.received)-1].Content, "Context:")
}

func TestAnswer_NoDocument(t *testing.T) {
	generator := &stubGenerator{reply: "Hi! Please ask about your document."}
	p := newTestPipeline(newMemoryChunkStore(), &stubEmbedder{}, generator)

	answer, err := p.Answer(context.Background(), 0, "hello", nil)

	require.NoError(t, err)
	assert.False(t, answer.UsedContext)
	require.NotEmpty(t, generator.received)
	assert.Contains(t, generator.received[0].Content, RefusalSentence)
}

func TestAnswer_EmbeddingFailureDegradesToNoContext(t *testing.T) {
	store := newMemoryChunkStore()
	p := newTestPipeline(store, &stubEmbedder{}, &stubGenerator{reply: "ok"})
	_, err := p.Ingest(context.Background(), 1, "Document text about budgets.")
	require.NoError(t, err)

	// Swap in a failing embedder for the answer path.
	generator := &stubGenerator{reply: "degraded reply"}
	p = newTestPipeline(store, &stubEmbedder{failAll: true}, generator)

	answer, err := p.Answer(context.Background(), 1, "what is the budget?", nil)

	require.NoError(t, err)
	assert.False(t, answer.UsedContext)
	assert.Equal(t, "degraded reply", answer.Text)
}

func TestAnswer_GenerationFailureReturnsApology(t *testing.T) {
	p := newTestPipeline(newMemoryChunkStore(), &stubEmbedder{}, &stubGenerator{err: errors.New("llm down")})

	answer, err := p.Answer(context.Background(), 0, "hello", nil)

	require.NoError(t, err, "generation failure must not fail the turn")
	assert.Equal(t, Apology, answer.Text)
}

func TestAnswer_BlankGenerationReturnsApology(t *testing.T) {
	p := newTestPipeline(newMemoryChunkStore(), &stubEmbedder{}, &stubGenerator{reply: "   "})

	answer, err := p.Answer(context.Background(), 0, "hello", nil)

	require.NoError(t, err)
	assert.Equal(t, Apology, answer.Text)
}

func TestAnswer_DimensionMismatchFailsTurn(t *testing.T) {
	store := newMemoryChunkStore()
	p := newTestPipeline(store, &stubEmbedder{dimension: 3}, &stubGenerator{reply: "ok"})
	_, err := p.Ingest(context.Background(), 1, "Document text about budgets.")
	require.NoError(t, err)

	p = newTestPipeline(store, &stubEmbedder{dimension: 4}, &stubGenerator{reply: "ok"})

	_, err = p.Answer(context.Background(), 1, "what is the budget?", nil)

	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
