package persistent

import (
	"errors"

	"nrw/pkg/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type PostRepository interface {
	Create(post *models.Post, media []models.PostMedia) error
	GetByID(postID string) (*models.Post, error)
	List(viewerID string, limit, offset int) ([]*models.Post, error)
	GetByAuthorID(authorID string, limit, offset int) ([]*models.Post, error)
	Delete(postID string) error

	GetUser(userID string) (*models.User, error)
	UpdateUser(user *models.User) error

	IsLiked(userID, postID string) (bool, error)
	ToggleLike(userID, postID string) (liked bool, err error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post and its media rows in one transaction so a
// failed insert leaves nothing behind.
func (r *postRepository) Create(post *models.Post, media []models.PostMedia) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for i := range media {
			media[i].PostID = post.ID
			if err := tx.Create(&media[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *postRepository) GetByID(postID string) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Media").First(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns newest-first posts visible to the viewer: approved posts
// plus the viewer's own regardless of status.
func (r *postRepository) List(viewerID string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	query := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if viewerID != "" {
		query = query.Where("status = ? OR author_id = ?", models.StatusApproved, viewerID)
	} else {
		query = query.Where("status = ?", models.StatusApproved)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) GetByAuthorID(authorID string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Delete(postID string) error {
	result := r.db.Delete(&models.Post{}, "id = ?", postID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) GetUser(userID string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *postRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *postRepository) IsLiked(userID, postID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// ToggleLike flips the like and keeps likes_count in step, atomically.
func (r *postRepository) ToggleLike(userID, postID string) (bool, error) {
	var liked bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Like{}).
			Where("user_id = ? AND post_id = ?", userID, postID).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
			liked = false
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("GREATEST(likes_count - 1, 0)")).Error
		}

		if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
			return err
		}
		liked = true
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	return liked, err
}
