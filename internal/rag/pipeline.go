package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ujjwal-07/RAG-CHAT/internal/ai"
	"github.com/ujjwal-07/RAG-CHAT/internal/model"
)

// Apology is returned to the user when the generation call fails. The turn
// never fails outright; response quality degrades instead.
const Apology = "Sorry, I am unable to generate a response at the moment. Please try again later."

// Embedder maps text to a fixed-length vector via an external service.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces the assistant reply for a composed prompt.
type Generator interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// Answer is the outcome of one grounded chat turn.
type Answer struct {
	Text        string `json:"text"`
	UsedContext bool   `json:"used_context"`
}

// Pipeline wires chunking, embedding, retrieval and prompt composition.
// Ingest and Answer are its two entry points; everything else in the
// application is a collaborator calling into them.
type Pipeline struct {
	chunker   *Chunker
	embedder  Embedder
	store     ChunkStore
	retriever *Retriever
	composer  *Composer
	generator Generator
}

func NewPipeline(chunker *Chunker, embedder Embedder, store ChunkStore, retriever *Retriever, composer *Composer, generator Generator) *Pipeline {
	return &Pipeline{
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		retriever: retriever,
		composer:  composer,
		generator: generator,
	}
}

// Ingest chunks rawText, embeds each chunk and persists it. A chunk whose
// embedding call fails is logged and skipped so one bad chunk does not abort
// the rest of the document; a chunk whose embedding dimensionality disagrees
// with the document's earlier chunks fails the ingest. Returns the number of
// chunks persisted.
func (p *Pipeline) Ingest(ctx context.Context, documentID uint, rawText string) (int, error) {
	if documentID == 0 {
		return 0, fmt.Errorf("ingest: document id is zero")
	}
	pieces := p.chunker.Split(strings.TrimSpace(rawText))
	if len(pieces) == 0 {
		return 0, ErrEmptyExtraction
	}

	stored := 0
	dimension := 0
	for i, text := range pieces {
		vec, err := p.embedder.Embed(ctx, text)
		if err != nil {
			log.Printf("ingest document %d: skip chunk %d: %v: %v", documentID, i, ErrEmbeddingService, err)
			continue
		}
		if len(vec) == 0 {
			log.Printf("ingest document %d: skip chunk %d: empty embedding", documentID, i)
			continue
		}
		if dimension == 0 {
			dimension = len(vec)
		} else if len(vec) != dimension {
			return stored, fmt.Errorf("chunk %d has dimension %d, document has %d: %w",
				i, len(vec), dimension, ErrDimensionMismatch)
		}

		chunk := &model.Chunk{
			DocumentID: documentID,
			Seq:        i,
			Content:    text,
		}
		chunk.SetEmbedding(vec)
		if err := p.store.Put(ctx, chunk); err != nil {
			return stored, fmt.Errorf("store chunk %d: %w", i, err)
		}
		stored++
	}
	return stored, nil
}

// Answer runs one chat turn: embed the query, retrieve context from the
// document (documentID 0 means the conversation has no document), compose
// the prompt and call generation. Embedding and generation failures degrade
// the reply instead of failing the turn.
func (p *Pipeline) Answer(ctx context.Context, documentID uint, query string, history []model.Message) (Answer, error) {
	queryEmbedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("answer: %v, continuing without context: %v", ErrEmbeddingService, err)
		queryEmbedding = nil
	}

	var result Result
	if documentID != 0 && len(queryEmbedding) > 0 {
		result, err = p.retriever.Retrieve(ctx, documentID, query, queryEmbedding)
		if err != nil {
			return Answer{}, err
		}
	}

	messages := p.composer.Compose(query, result.Context, result.UsedContext, history)
	text, err := p.generator.Complete(ctx, messages)
	if err != nil {
		log.Printf("answer: %v: %v", ErrGenerationService, err)
		return Answer{Text: Apology, UsedContext: result.UsedContext}, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = Apology
	}
	return Answer{Text: text, UsedContext: result.UsedContext}, nil
}
