package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ujjwal-07/RAG-CHAT/internal/model"
)

// ChunkRepository is the GORM-backed chunk store consumed by the retrieval
// core. Chunks come back in ingestion (seq) order; there is no secondary
// index and scans are linear per document.
type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) Put(ctx context.Context, chunk *model.Chunk) error {
	if err := r.db.WithContext(ctx).Create(chunk).Error; err != nil {
		return fmt.Errorf("create chunk failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID uint) ([]model.Chunk, error) {
	var chunks []model.Chunk
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Order("seq ASC").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks by document failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) DeleteByDocumentID(documentID uint) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.Chunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) CountByDocumentID(documentID uint) (int64, error) {
	var n int64
	if err := r.db.Model(&model.Chunk{}).Where("document_id = ?", documentID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chunks by document failed: %w", err)
	}
	return n, nil
}
