package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"nrw/pkg/contentfilter"
	"nrw/pkg/logger"
	"nrw/pkg/models"
	"nrw/pkg/queue"
	"nrw/services/chat/internal/repo/persistent"

	"github.com/redis/go-redis/v9"
)

const maxMessageRunes = 2000

var (
	ErrUnauthorized   = errors.New("authentication required")
	ErrNotParticipant = errors.New("not a participant of this chat")
	ErrNotFound       = errors.New("chat not found")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", maxMessageRunes)
)

// BlockedMessageError reports which blocklist entry rejected the message.
type BlockedMessageError struct {
	Reason string
}

func (e *BlockedMessageError) Error() string {
	return "message rejected: " + e.Reason
}

type ChatUseCase interface {
	OpenChat(ctx context.Context, userID, otherUserID string) (*models.Chat, error)
	ListChats(ctx context.Context, userID string) ([]*models.Chat, error)
	SendMessage(ctx context.Context, chatID, senderID, content string) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, chatID, userID string, limit, offset int) ([]*models.ChatMessage, error)
	MarkRead(ctx context.Context, chatID, userID string) (int64, error)
}

type chatUseCase struct {
	chatRepo    persistent.ChatRepository
	filter      *contentfilter.Filter
	redisClient *redis.Client
	queueClient *queue.Client
	logger      *logger.Logger
	now         func() time.Time
}

func NewChatUseCase(chatRepo persistent.ChatRepository, filter *contentfilter.Filter, redisClient *redis.Client, queueClient *queue.Client, log *logger.Logger) ChatUseCase {
	return &chatUseCase{
		chatRepo:    chatRepo,
		filter:      filter,
		redisClient: redisClient,
		queueClient: queueClient,
		logger:      log,
		now:         time.Now,
	}
}

func (uc *chatUseCase) OpenChat(ctx context.Context, userID, otherUserID string) (*models.Chat, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if otherUserID == "" || otherUserID == userID {
		return nil, fmt.Errorf("invalid chat partner")
	}
	return uc.chatRepo.GetOrCreateChat(userID, otherUserID)
}

func (uc *chatUseCase) ListChats(ctx context.Context, userID string) ([]*models.Chat, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return uc.chatRepo.ListChats(userID)
}

// SendMessage gates the text through the content filter, stores it, and
// fans the event out over Redis pub/sub plus a RabbitMQ notification for
// the recipient. A filter hit rejects the whole message; nothing is
// truncated or stored.
func (uc *chatUseCase) SendMessage(ctx context.Context, chatID, senderID, content string) (*models.ChatMessage, error) {
	if senderID == "" {
		return nil, ErrUnauthorized
	}
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > maxMessageRunes {
		return nil, ErrMessageTooLong
	}
	if res := uc.filter.Check(content); res.Hit {
		return nil, &BlockedMessageError{Reason: res.Reason}
	}

	chat, err := uc.membership(chatID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: uc.now(),
	}
	if err := uc.chatRepo.CreateMessage(msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	uc.publish(ctx, chat, msg)
	return msg, nil
}

func (uc *chatUseCase) ListMessages(ctx context.Context, chatID, userID string, limit, offset int) ([]*models.ChatMessage, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if _, err := uc.membership(chatID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.chatRepo.ListMessages(chatID, limit, offset)
}

func (uc *chatUseCase) MarkRead(ctx context.Context, chatID, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrUnauthorized
	}
	if _, err := uc.membership(chatID, userID); err != nil {
		return 0, err
	}
	return uc.chatRepo.MarkRead(chatID, userID, uc.now())
}

func (uc *chatUseCase) membership(chatID, userID string) (*models.Chat, error) {
	chat, err := uc.chatRepo.GetChat(chatID)
	if errors.Is(err, persistent.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if chat.UserAID != userID && chat.UserBID != userID {
		return nil, ErrNotParticipant
	}
	return chat, nil
}

// publish is best-effort: a down broker never fails the send.
func (uc *chatUseCase) publish(ctx context.Context, chat *models.Chat, msg *models.ChatMessage) {
	recipientID := chat.UserAID
	if recipientID == msg.SenderID {
		recipientID = chat.UserBID
	}

	if uc.redisClient != nil {
		payload, err := json.Marshal(msg)
		if err == nil {
			channel := "chat:" + chat.ID
			if err := uc.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
				uc.logger.Warn("Chat pub/sub publish failed on %s: %v", channel, err)
			}
		}
	}

	if uc.queueClient != nil {
		if err := uc.queueClient.PublishChatNotification(ctx, chat.ID, msg.ID, msg.SenderID, recipientID); err != nil {
			uc.logger.Warn("Chat notification not published for message %s: %v", msg.ID, err)
		}
	}
}
