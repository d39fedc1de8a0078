package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"nrw/pkg/contentfilter"
	"nrw/pkg/logger"
	"nrw/pkg/models"
	"nrw/services/chat/internal/repo/persistent"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) GetOrCreateChat(userA, userB string) (*models.Chat, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatRepository) GetChat(chatID string) (*models.Chat, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatRepository) ListChats(userID string) ([]*models.Chat, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Chat), args.Error(1)
}

func (m *MockChatRepository) CreateMessage(msg *models.ChatMessage) error {
	return m.Called(msg).Error(0)
}

func (m *MockChatRepository) ListMessages(chatID string, limit, offset int) ([]*models.ChatMessage, error) {
	args := m.Called(chatID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) MarkRead(chatID, userID string, at time.Time) (int64, error) {
	args := m.Called(chatID, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

var testChat = &models.Chat{ID: "chat-1", UserAID: "alice", UserBID: "bob"}

func newChatUseCase(repo *MockChatRepository, redisClient *redis.Client) *chatUseCase {
	uc := NewChatUseCase(repo, contentfilter.Default(), redisClient, nil, logger.New()).(*chatUseCase)
	uc.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return uc
}

func TestSendMessage(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetChat", "chat-1").Return(testChat, nil)
	repo.On("CreateMessage", mock.AnythingOfType("*models.ChatMessage")).Return(nil)

	uc := newChatUseCase(repo, nil)

	msg, err := uc.SendMessage(context.Background(), "chat-1", "alice", "hey bob")

	require.NoError(t, err)
	assert.Equal(t, "hey bob", msg.Content)
	assert.Equal(t, "alice", msg.SenderID)
	repo.AssertExpectations(t)
}

func TestSendMessageBlockedByFilter(t *testing.T) {
	repo := new(MockChatRepository)
	uc := newChatUseCase(repo, nil)

	_, err := uc.SendMessage(context.Background(), "chat-1", "alice", "you should kys")

	var blocked *BlockedMessageError
	require.ErrorAs(t, err, &blocked)
	assert.NotEmpty(t, blocked.Reason)
	repo.AssertNotCalled(t, "CreateMessage", mock.Anything)
}

func TestSendMessageNonParticipant(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetChat", "chat-1").Return(testChat, nil)

	uc := newChatUseCase(repo, nil)

	_, err := uc.SendMessage(context.Background(), "chat-1", "mallory", "hi")

	assert.ErrorIs(t, err, ErrNotParticipant)
	repo.AssertNotCalled(t, "CreateMessage", mock.Anything)
}

func TestSendMessageEmptyAndTooLong(t *testing.T) {
	uc := newChatUseCase(new(MockChatRepository), nil)

	_, err := uc.SendMessage(context.Background(), "chat-1", "alice", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = uc.SendMessage(context.Background(), "chat-1", "alice", strings.Repeat("a", 2001))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestSendMessagePublishesToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sub := client.Subscribe(context.Background(), "chat:chat-1")
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	repo := new(MockChatRepository)
	repo.On("GetChat", "chat-1").Return(testChat, nil)
	repo.On("CreateMessage", mock.Anything).Return(nil)

	uc := newChatUseCase(repo, client)

	_, err = uc.SendMessage(context.Background(), "chat-1", "bob", "ping")
	require.NoError(t, err)

	select {
	case received := <-sub.Channel():
		var msg models.ChatMessage
		require.NoError(t, json.Unmarshal([]byte(received.Payload), &msg))
		assert.Equal(t, "ping", msg.Content)
		assert.Equal(t, "bob", msg.SenderID)
	case <-time.After(2 * time.Second):
		t.Fatal("no pub/sub message received")
	}
}

func TestListMessagesMembershipChecked(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetChat", "chat-1").Return(testChat, nil)

	uc := newChatUseCase(repo, nil)

	_, err := uc.ListMessages(context.Background(), "chat-1", "mallory", 50, 0)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestListMessagesDefaultsLimit(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetChat", "chat-1").Return(testChat, nil)
	repo.On("ListMessages", "chat-1", 50, 0).Return([]*models.ChatMessage{}, nil)

	uc := newChatUseCase(repo, nil)

	_, err := uc.ListMessages(context.Background(), "chat-1", "alice", 0, -3)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestMarkRead(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetChat", "chat-1").Return(testChat, nil)
	repo.On("MarkRead", "chat-1", "bob", mock.Anything).Return(int64(3), nil)

	uc := newChatUseCase(repo, nil)

	marked, err := uc.MarkRead(context.Background(), "chat-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), marked)
}

func TestOpenChatValidation(t *testing.T) {
	repo := new(MockChatRepository)
	uc := newChatUseCase(repo, nil)

	_, err := uc.OpenChat(context.Background(), "", "bob")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = uc.OpenChat(context.Background(), "alice", "alice")
	assert.Error(t, err)
}

func TestOpenChat(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetOrCreateChat", "alice", "bob").Return(testChat, nil)

	uc := newChatUseCase(repo, nil)

	chat, err := uc.OpenChat(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "chat-1", chat.ID)
}

func TestSendMessageUnknownChat(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetChat", "nope").Return(nil, persistent.ErrNotFound)

	uc := newChatUseCase(repo, nil)

	_, err := uc.SendMessage(context.Background(), "nope", "alice", "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}
