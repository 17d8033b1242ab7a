package model

import "time"

// Chat is a conversation, optionally grounded in one document.
// DocumentID 0 means the chat has no document bound to it.
type Chat struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	DocumentID uint      `gorm:"index" json:"document_id"`
	Title      string    `gorm:"size:128;not null" json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
