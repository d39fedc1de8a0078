package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chat struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	UserAID   string    `gorm:"type:uuid;not null;index" json:"user_a_id"`
	UserBID   string    `gorm:"type:uuid;not null;index" json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// ChatMessage rows are append-only: read receipts accumulate in
// ChatMessageRead, the message itself is never deleted.
type ChatMessage struct {
	ID        string            `gorm:"type:uuid;primary_key" json:"id"`
	ChatID    string            `gorm:"type:uuid;not null;index" json:"chat_id"`
	SenderID  string            `gorm:"type:uuid;not null;index" json:"sender_id"`
	Content   string            `gorm:"not null" json:"content"`
	ReadBy    []ChatMessageRead `gorm:"foreignKey:MessageID" json:"read_by,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

type ChatMessageRead struct {
	MessageID string    `gorm:"type:uuid;primaryKey" json:"message_id"`
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	ReadAt    time.Time `json:"read_at"`
}
