package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ujjwal-07/RAG-CHAT/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByChatID(chatID uint, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var messages []model.Message
	if err := r.db.Where("chat_id = ?", chatID).Order("id ASC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

// ListRecentByChatID returns the last limit messages in chronological order.
func (r *MessageRepository) ListRecentByChatID(chatID uint, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 20
	}

	var messages []model.Message
	if err := r.db.Where("chat_id = ?", chatID).Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list recent messages failed: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) DeleteByChatID(chatID uint) error {
	if err := r.db.Where("chat_id = ?", chatID).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete messages by chat failed: %w", err)
	}
	return nil
}

// DeleteLastIfUserTurn removes the most recent message of the chat, but only
// when it is a user turn the assistant never answered. Used as the
// compensating action when a client abandons a request mid-flight. Returns
// whether a message was deleted.
func (r *MessageRepository) DeleteLastIfUserTurn(chatID uint) (bool, error) {
	var last model.Message
	if err := r.db.Where("chat_id = ?", chatID).Order("id DESC").First(&last).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find last message failed: %w", err)
	}
	if last.Role != model.RoleUser {
		return false, nil
	}
	if err := r.db.Delete(&model.Message{}, last.ID).Error; err != nil {
		return false, fmt.Errorf("delete last message failed: %w", err)
	}
	return true, nil
}
