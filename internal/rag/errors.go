package rag

import "errors"

var (
	// ErrEmbeddingService marks a failed embedding call. During ingestion the
	// affected chunk is skipped; on the query path retrieval degrades to
	// answering without context.
	ErrEmbeddingService = errors.New("embedding service failed")

	// ErrGenerationService marks a failed LLM call. The caller receives a
	// fixed apology string instead of the error.
	ErrGenerationService = errors.New("generation service failed")

	// ErrEmptyExtraction means the extracted text produced no chunks. Nothing
	// is stored and the caller must surface a hard failure.
	ErrEmptyExtraction = errors.New("no chunkable text extracted")

	// ErrDimensionMismatch means two embeddings being compared (or stored for
	// one document) differ in length. Cosine similarity is undefined in that
	// case, so we fail fast instead of scoring nonsense.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
