package http

import (
	"net/http"
	"strconv"
	"time"

	"nrw/pkg/logger"
	"nrw/pkg/models"
	"nrw/services/feed/internal/usecase"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedUseCase usecase.FeedUseCase
	logger      *logger.Logger
}

func NewFeedHandler(feedUseCase usecase.FeedUseCase, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feedUseCase: feedUseCase,
		logger:      logger,
	}
}

// GetFeed godoc
// @Summary      Get the viewer's feed
// @Description  Returns posts ordered by the viewer's assigned variant (chronological or ranked). Anonymous viewers get the ranked ordering.
// @Tags         feed
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of posts to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /feed [get]
func (h *FeedHandler) GetFeed(c *gin.Context) {
	viewerID := c.GetString("user_id")
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	posts, variant, err := h.feedUseCase.GetFeed(c.Request.Context(), viewerID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get feed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get feed"})
		return
	}

	formatted := make([]gin.H, len(posts))
	for i, p := range posts {
		formatted[i] = formatPost(p)
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":   formatted,
		"count":   len(formatted),
		"offset":  offset,
		"variant": variant,
	})
}

// GetVariant godoc
// @Summary      Get the viewer's feed variant
// @Description  Returns the A/B ordering variant assigned to the viewer.
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /feed/variant [get]
func (h *FeedHandler) GetVariant(c *gin.Context) {
	viewerID := c.GetString("user_id")

	variant, err := h.feedUseCase.GetVariant(c.Request.Context(), viewerID)
	if err != nil {
		h.logger.Warn("Variant lookup degraded for %q: %v", viewerID, err)
	}

	c.JSON(http.StatusOK, gin.H{"variant": string(variant)})
}

func formatPost(p *models.Post) gin.H {
	row := gin.H{
		"id":             p.ID,
		"author_id":      p.AuthorID,
		"content":        p.Content,
		"media_url":      p.MediaURL,
		"media_type":     string(p.MediaType),
		"likes_count":    p.LikesCount,
		"comments_count": p.CommentsCount,
		"created_at":     p.CreatedAt.Format(time.RFC3339Nano),
	}
	if urls := p.MediaURLs(); len(urls) > 1 {
		row["media_urls"] = urls
	}
	return row
}
