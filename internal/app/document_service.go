package app

import (
	"context"
	"errors"
	"strings"

	"github.com/ujjwal-07/RAG-CHAT/internal/model"
	"github.com/ujjwal-07/RAG-CHAT/internal/rag"
	"github.com/ujjwal-07/RAG-CHAT/internal/repository"
)

type DocumentService struct {
	docRepo   *repository.DocumentRepository
	chunkRepo *repository.ChunkRepository
	chatRepo  *repository.ChatRepository
	pipeline  *rag.Pipeline
}

func NewDocumentService(
	docRepo *repository.DocumentRepository,
	chunkRepo *repository.ChunkRepository,
	chatRepo *repository.ChatRepository,
	pipeline *rag.Pipeline,
) *DocumentService {
	return &DocumentService{
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		chatRepo:  chatRepo,
		pipeline:  pipeline,
	}
}

type IngestInput struct {
	UserID    uint
	Name      string
	MediaType string
	Size      int64
	Content   string // extracted text, produced by the upload handler
}

type IngestResult struct {
	Document   model.Document `json:"document"`
	ChunkCount int            `json:"chunk_count"`
}

// Ingest creates the document record, then chunks, embeds and stores its
// text through the retrieval pipeline. An empty extraction is a hard failure
// and leaves nothing behind; a partially embedded document (some chunks
// skipped) is fine.
func (s *DocumentService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, rag.ErrEmptyExtraction
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Untitled"
	}

	doc := &model.Document{
		UserID:    input.UserID,
		Name:      name,
		MediaType: input.MediaType,
		Size:      input.Size,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	stored, err := s.pipeline.Ingest(ctx, doc.ID, content)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyExtraction) {
			_ = s.docRepo.DeleteByIDAndUserID(doc.ID, input.UserID)
			return nil, err
		}
		// Partial ingests (dimension mismatch, store failure mid-way) keep
		// what was stored; the caller sees the error.
		return nil, err
	}

	return &IngestResult{
		Document:   *doc,
		ChunkCount: stored,
	}, nil
}

type DocumentDetail struct {
	Document   model.Document `json:"document"`
	ChunkCount int64          `json:"chunk_count"`
	ChatIDs    []uint         `json:"chat_ids"`
}

func (s *DocumentService) GetDocument(userID, documentID uint) (*DocumentDetail, error) {
	if userID == 0 || documentID == 0 {
		return nil, ErrInvalidInput
	}
	doc, err := s.docRepo.GetByIDAndUserID(documentID, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	count, err := s.chunkRepo.CountByDocumentID(doc.ID)
	if err != nil {
		return nil, err
	}
	chatIDs, err := s.chatRepo.ListByDocumentID(doc.ID)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{Document: *doc, ChunkCount: count, ChatIDs: chatIDs}, nil
}

func (s *DocumentService) ListDocuments(userID uint) ([]model.Document, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.docRepo.ListByUserID(userID)
}

// DeleteDocument removes a document and cascades to its chunks. Chats bound
// to the document are kept; their later turns simply find no chunks and
// answer without context.
func (s *DocumentService) DeleteDocument(userID, documentID uint) error {
	if userID == 0 || documentID == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docRepo.GetByIDAndUserID(documentID, userID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.chunkRepo.DeleteByDocumentID(doc.ID); err != nil {
		return err
	}
	return s.docRepo.DeleteByIDAndUserID(doc.ID, userID)
}
