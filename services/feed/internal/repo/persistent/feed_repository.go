package persistent

import (
	"nrw/pkg/models"

	"gorm.io/gorm"
)

type FeedRepository interface {
	// GetVisiblePosts returns newest-first posts the viewer may see:
	// approved posts from anyone, plus the viewer's own pending/rejected
	// posts. Soft-deleted posts are excluded by GORM.
	GetVisiblePosts(viewerID string, limit int) ([]*models.Post, error)
	GetFollowingIDs(viewerID string) ([]string, error)
}

type feedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) GetVisiblePosts(viewerID string, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	query := r.db.Order("created_at DESC")
	if viewerID != "" {
		query = query.Where("status = ? OR author_id = ?", models.StatusApproved, viewerID)
	} else {
		query = query.Where("status = ?", models.StatusApproved)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *feedRepository) GetFollowingIDs(viewerID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ?", viewerID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
