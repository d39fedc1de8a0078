package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostStatus string

const (
	StatusPending  PostStatus = "pending"
	StatusApproved PostStatus = "approved"
	StatusRejected PostStatus = "rejected"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeNone  MediaType = ""
)

type Post struct {
	ID       string  `gorm:"type:uuid;primary_key" json:"id"`
	AuthorID string  `gorm:"type:uuid;not null;index" json:"author_id"`
	Content  *string `json:"content"`
	// MediaURL is a single URL, or a JSON-encoded array when an image post
	// carries more than one image. Video posts always hold exactly one URL.
	MediaURL      *string        `json:"media_url"`
	MediaType     MediaType      `gorm:"type:varchar(10)" json:"media_type"`
	Status        PostStatus     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	LikesCount    int            `gorm:"default:0" json:"likes_count"`
	CommentsCount int            `gorm:"default:0" json:"comments_count"`
	Media         []PostMedia    `gorm:"foreignKey:PostID" json:"media,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// MediaURLs decodes the media_url column into its ordered list form. A bare
// URL yields a single-element slice; nil yields nil.
func (p *Post) MediaURLs() []string {
	if p.MediaURL == nil || *p.MediaURL == "" {
		return nil
	}
	raw := *p.MediaURL
	if raw[0] == '[' {
		var urls []string
		if err := json.Unmarshal([]byte(raw), &urls); err == nil {
			return urls
		}
	}
	return []string{raw}
}

// EncodeMediaURLs produces the media_url column value for an ordered URL
// list: nil for empty, the bare URL for one, a JSON array for several.
func EncodeMediaURLs(urls []string) (*string, error) {
	switch len(urls) {
	case 0:
		return nil, nil
	case 1:
		u := urls[0]
		return &u, nil
	default:
		b, err := json.Marshal(urls)
		if err != nil {
			return nil, err
		}
		s := string(b)
		return &s, nil
	}
}
