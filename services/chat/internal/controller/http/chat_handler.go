package http

import (
	"errors"
	"net/http"
	"strconv"

	"nrw/pkg/logger"
	"nrw/services/chat/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatUseCase usecase.ChatUseCase
	logger      *logger.Logger
}

func NewChatHandler(chatUseCase usecase.ChatUseCase, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		logger:      logger,
	}
}

type OpenChatRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// OpenChat godoc
// @Summary      Open (or find) a chat with another user
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chat body OpenChatRequest true "Chat partner"
// @Success      200  {object}  models.Chat
// @Failure      400  {object}  map[string]string
// @Router       /chats [post]
func (h *ChatHandler) OpenChat(c *gin.Context) {
	userID := c.GetString("user_id")

	var req OpenChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := h.chatUseCase.OpenChat(c.Request.Context(), userID, req.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// ListChats godoc
// @Summary      List the viewer's chats
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /chats [get]
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetString("user_id")

	chats, err := h.chatUseCase.ListChats(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats, "count": len(chats)})
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage godoc
// @Summary      Send a message
// @Description  Messages run through the content filter; a hit rejects the whole message.
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Chat ID"
// @Param        message body SendMessageRequest true "Message"
// @Success      201  {object}  models.ChatMessage
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /chats/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chatUseCase.SendMessage(c.Request.Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMessages godoc
// @Summary      List a chat's messages
// @Description  Newest-first messages with read receipts.
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Chat ID"
// @Param        limit query int false "Number of messages to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /chats/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.chatUseCase.ListMessages(c.Request.Context(), c.Param("id"), userID, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages), "offset": offset})
}

// MarkRead godoc
// @Summary      Mark a chat read
// @Description  Records read receipts for every unread message from the other participant.
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Chat ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /chats/{id}/read [post]
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")

	marked, err := h.chatUseCase.MarkRead(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

func (h *ChatHandler) writeError(c *gin.Context, err error) {
	var blocked *usecase.BlockedMessageError
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &blocked):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": blocked.Error(), "reason": blocked.Reason})
	case errors.Is(err, usecase.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrEmptyMessage), errors.Is(err, usecase.ErrMessageTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Chat operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
