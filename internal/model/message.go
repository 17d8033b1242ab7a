package model

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatID      uint      `gorm:"not null;index" json:"chat_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Role        string    `gorm:"size:16;not null;index" json:"role"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	UsedContext bool      `gorm:"not null;default:false" json:"used_context"`
	CreatedAt   time.Time `json:"created_at"`
}
