package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Follow struct {
	ID         string         `gorm:"type:uuid;primary_key" json:"id"`
	FollowerID string         `gorm:"type:uuid;not null;index" json:"follower_id"`
	FolloweeID string         `gorm:"type:uuid;not null;index" json:"followee_id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
