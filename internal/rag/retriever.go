package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ujjwal-07/RAG-CHAT/internal/model"
)

// ChunkStore persists chunks and lists them back in storage (ingestion)
// order. Retrieval is a linear scan over one document's chunks; acceptable
// because per-document chunk counts stay small.
type ChunkStore interface {
	Put(ctx context.Context, chunk *model.Chunk) error
	ListByDocument(ctx context.Context, documentID uint) ([]model.Chunk, error)
}

// Policy holds the tunable retrieval heuristics. Keywords and thresholds
// live in configuration so they can be re-tuned without touching scoring.
type Policy struct {
	TopK int

	// ContextKeywords classify a query as referring to the uploaded
	// artifact itself; such queries retrieve under the lower threshold.
	ContextKeywords []string

	// SummaryKeywords is the subset of queries that fall back to the first
	// chunks of the document when no single chunk scores above threshold.
	SummaryKeywords []string

	// ContextThreshold applies to context-seeking queries, DefaultThreshold
	// to everything else. Chit-chat gets the high bar so unrelated document
	// text is not dragged into the prompt.
	ContextThreshold float64
	DefaultThreshold float64
}

func DefaultPolicy() Policy {
	return Policy{
		TopK: 3,
		ContextKeywords: []string{
			"upload", "file", "document", "picture", "image",
			"what is this", "summarize", "summary",
		},
		SummaryKeywords:  []string{"summarize", "summary", "what is this"},
		ContextThreshold: 0.05,
		DefaultThreshold: 0.25,
	}
}

// Result is the retrieval decision for one query.
type Result struct {
	Context     string
	UsedContext bool
	Chunks      []model.Chunk
}

// Retriever scores a document's chunks against a query embedding and
// decides what context, if any, to hand to generation.
type Retriever struct {
	store  ChunkStore
	policy Policy
}

func NewRetriever(store ChunkStore, policy Policy) *Retriever {
	if policy.TopK <= 0 {
		policy.TopK = 3
	}
	return &Retriever{store: store, policy: policy}
}

// Retrieve loads the document's chunks, ranks them by cosine similarity and
// applies the threshold policy. An empty query embedding (the embedding call
// failed upstream) degrades to no context rather than erroring.
func (r *Retriever) Retrieve(ctx context.Context, documentID uint, query string, queryEmbedding []float32) (Result, error) {
	if documentID == 0 || len(queryEmbedding) == 0 {
		return Result{}, nil
	}

	chunks, err := r.store.ListByDocument(ctx, documentID)
	if err != nil {
		return Result{}, err
	}
	if len(chunks) == 0 {
		return Result{}, nil
	}

	type scoredChunk struct {
		chunk model.Chunk
		score float64
	}
	scored := make([]scoredChunk, 0, len(chunks))
	for i := range chunks {
		vec := chunks[i].EmbeddingVector()
		if len(vec) != len(queryEmbedding) {
			return Result{}, fmt.Errorf("chunk %d has dimension %d, query has %d: %w",
				chunks[i].ID, len(vec), len(queryEmbedding), ErrDimensionMismatch)
		}
		scored = append(scored, scoredChunk{chunk: chunks[i], score: CosineSimilarity(vec, queryEmbedding)})
	}

	// Stable sort keeps storage order on score ties.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	topK := r.policy.TopK
	if topK > len(scored) {
		topK = len(scored)
	}
	top := scored[:topK]

	lower := strings.ToLower(query)
	threshold := r.policy.DefaultThreshold
	if containsAny(lower, r.policy.ContextKeywords) {
		threshold = r.policy.ContextThreshold
	}

	if top[0].score > threshold {
		selected := make([]model.Chunk, len(top))
		texts := make([]string, len(top))
		for i := range top {
			selected[i] = top[i].chunk
			texts[i] = top[i].chunk.Content
		}
		return Result{
			Context:     strings.Join(texts, "\n\n"),
			UsedContext: true,
			Chunks:      selected,
		}, nil
	}

	// A summary request may have no single highly-similar chunk even though
	// the whole document is relevant, so hand back the document's opening
	// chunks in storage order as a best-effort overview.
	if containsAny(lower, r.policy.SummaryKeywords) {
		n := r.policy.TopK
		if n > len(chunks) {
			n = len(chunks)
		}
		selected := make([]model.Chunk, n)
		texts := make([]string, n)
		for i := 0; i < n; i++ {
			selected[i] = chunks[i]
			texts[i] = chunks[i].Content
		}
		return Result{
			Context:     strings.Join(texts, "\n\n"),
			UsedContext: true,
			Chunks:      selected,
		}, nil
	}

	return Result{}, nil
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CosineSimilarity is dot(a,b) / (|a| * |b|); zero for empty or zero-norm
// vectors. Callers must ensure equal dimensionality.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
