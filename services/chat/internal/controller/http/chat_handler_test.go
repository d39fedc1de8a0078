package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nrw/pkg/logger"
	"nrw/pkg/models"
	"nrw/services/chat/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockChatUseCase is a mock implementation of ChatUseCase
type MockChatUseCase struct {
	mock.Mock
}

func (m *MockChatUseCase) OpenChat(ctx context.Context, userID, otherUserID string) (*models.Chat, error) {
	args := m.Called(userID, otherUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatUseCase) ListChats(ctx context.Context, userID string) ([]*models.Chat, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Chat), args.Error(1)
}

func (m *MockChatUseCase) SendMessage(ctx context.Context, chatID, senderID, content string) (*models.ChatMessage, error) {
	args := m.Called(chatID, senderID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockChatUseCase) ListMessages(ctx context.Context, chatID, userID string, limit, offset int) ([]*models.ChatMessage, error) {
	args := m.Called(chatID, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChatMessage), args.Error(1)
}

func (m *MockChatUseCase) MarkRead(ctx context.Context, chatID, userID string) (int64, error) {
	args := m.Called(chatID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func setupRouter(mockUseCase *MockChatUseCase, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewChatHandler(mockUseCase, logger.New())
	router := gin.New()
	auth := func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
	}
	router.POST("/chats", auth, handler.OpenChat)
	router.GET("/chats", auth, handler.ListChats)
	router.POST("/chats/:id/messages", auth, handler.SendMessage)
	router.GET("/chats/:id/messages", auth, handler.ListMessages)
	router.POST("/chats/:id/read", auth, handler.MarkRead)
	return router
}

func TestSendMessage_Success(t *testing.T) {
	mockUseCase := new(MockChatUseCase)
	router := setupRouter(mockUseCase, "alice")

	msg := &models.ChatMessage{ID: "m1", ChatID: "chat-1", SenderID: "alice", Content: "hey"}
	mockUseCase.On("SendMessage", "chat-1", "alice", "hey").Return(msg, nil)

	body := bytes.NewBufferString(`{"content":"hey"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/chats/chat-1/messages", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "m1", response["id"])
	mockUseCase.AssertExpectations(t)
}

func TestSendMessage_Blocked(t *testing.T) {
	mockUseCase := new(MockChatUseCase)
	router := setupRouter(mockUseCase, "alice")

	mockUseCase.On("SendMessage", "chat-1", "alice", "bad").
		Return(nil, &usecase.BlockedMessageError{Reason: "harassment"})

	body := bytes.NewBufferString(`{"content":"bad"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/chats/chat-1/messages", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "harassment", response["reason"])
}

func TestSendMessage_NotParticipant(t *testing.T) {
	mockUseCase := new(MockChatUseCase)
	router := setupRouter(mockUseCase, "mallory")

	mockUseCase.On("SendMessage", "chat-1", "mallory", "hi").Return(nil, usecase.ErrNotParticipant)

	body := bytes.NewBufferString(`{"content":"hi"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/chats/chat-1/messages", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListMessages(t *testing.T) {
	mockUseCase := new(MockChatUseCase)
	router := setupRouter(mockUseCase, "alice")

	messages := []*models.ChatMessage{
		{ID: "m2", ChatID: "chat-1", SenderID: "bob", Content: "second"},
		{ID: "m1", ChatID: "chat-1", SenderID: "alice", Content: "first"},
	}
	mockUseCase.On("ListMessages", "chat-1", "alice", 50, 0).Return(messages, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/chats/chat-1/messages", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["count"])
}

func TestMarkRead(t *testing.T) {
	mockUseCase := new(MockChatUseCase)
	router := setupRouter(mockUseCase, "bob")

	mockUseCase.On("MarkRead", "chat-1", "bob").Return(int64(4), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/chats/chat-1/read", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(4), response["marked"])
}

func TestOpenChat(t *testing.T) {
	mockUseCase := new(MockChatUseCase)
	router := setupRouter(mockUseCase, "alice")

	chat := &models.Chat{ID: "chat-1", UserAID: "alice", UserBID: "bob"}
	mockUseCase.On("OpenChat", "alice", "bob").Return(chat, nil)

	body := bytes.NewBufferString(`{"user_id":"bob"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/chats", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListChats(t *testing.T) {
	mockUseCase := new(MockChatUseCase)
	router := setupRouter(mockUseCase, "alice")

	mockUseCase.On("ListChats", "alice").Return([]*models.Chat{{ID: "chat-1"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/chats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["count"])
}
