package model

import "time"

// Document is an uploaded artifact whose extracted text has been chunked
// and embedded. Immutable once created, except for deletion.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	MediaType string    `gorm:"size:128;not null" json:"media_type"`
	Size      int64     `gorm:"not null" json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
