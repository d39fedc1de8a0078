package persistent

import (
	"errors"
	"time"

	"nrw/pkg/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type ChatRepository interface {
	GetOrCreateChat(userA, userB string) (*models.Chat, error)
	GetChat(chatID string) (*models.Chat, error)
	ListChats(userID string) ([]*models.Chat, error)
	CreateMessage(msg *models.ChatMessage) error
	ListMessages(chatID string, limit, offset int) ([]*models.ChatMessage, error)
	MarkRead(chatID, userID string, at time.Time) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// GetOrCreateChat finds the 1:1 chat between the two users, creating it on
// first contact. The pair is stored in normalized order so lookups hit
// regardless of who started the chat.
func (r *chatRepository) GetOrCreateChat(userA, userB string) (*models.Chat, error) {
	if userB < userA {
		userA, userB = userB, userA
	}

	var chat models.Chat
	err := r.db.Where("user_a_id = ? AND user_b_id = ?", userA, userB).First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat = models.Chat{UserAID: userA, UserBID: userB}
	if err := r.db.Create(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) GetChat(chatID string) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.First(&chat, "id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) ListChats(userID string) ([]*models.Chat, error) {
	var chats []*models.Chat
	err := r.db.Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateMessage appends the message and bumps the chat's updated_at so
// chat lists sort by recent activity.
func (r *chatRepository) CreateMessage(msg *models.ChatMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Chat{}).Where("id = ?", msg.ChatID).
			Update("updated_at", msg.CreatedAt).Error
	})
}

func (r *chatRepository) ListMessages(chatID string, limit, offset int) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	err := r.db.Preload("ReadBy").
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead records a read receipt for every message in the chat the user
// has not sent and not read yet, returning how many were marked. Receipts
// go in as one batch insert so a failure never leaves a partial set.
func (r *chatRepository) MarkRead(chatID, userID string, at time.Time) (int64, error) {
	var ids []string
	err := r.db.Model(&models.ChatMessage{}).
		Where("chat_id = ? AND sender_id <> ?", chatID, userID).
		Where("id NOT IN (?)", r.db.Model(&models.ChatMessageRead{}).
			Select("message_id").Where("user_id = ?", userID)).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	receipts := make([]models.ChatMessageRead, 0, len(ids))
	for _, id := range ids {
		receipts = append(receipts, models.ChatMessageRead{MessageID: id, UserID: userID, ReadAt: at})
	}
	if err := r.db.Create(&receipts).Error; err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}
