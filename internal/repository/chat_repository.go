package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ujjwal-07/RAG-CHAT/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(chat *model.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return fmt.Errorf("create chat failed: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListByUserID(userID uint) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats failed: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) GetByIDAndUserID(chatID, userID uint) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("id = ? AND user_id = ?", chatID, userID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat failed: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) DeleteByIDAndUserID(chatID, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", chatID, userID).Delete(&model.Chat{}).Error; err != nil {
		return fmt.Errorf("delete chat failed: %w", err)
	}
	return nil
}

// ListByDocumentID returns the IDs of chats bound to a document.
func (r *ChatRepository) ListByDocumentID(documentID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&model.Chat{}).Where("document_id = ?", documentID).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list chat ids by document failed: %w", err)
	}
	return ids, nil
}

// Touch bumps UpdatedAt so recently active chats sort first.
func (r *ChatRepository) Touch(chatID uint) error {
	if err := r.db.Model(&model.Chat{}).Where("id = ?", chatID).Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
		return fmt.Errorf("touch chat failed: %w", err)
	}
	return nil
}
