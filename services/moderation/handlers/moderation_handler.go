package handlers

import (
	"net/http"
	"strconv"

	"nrw/pkg/contentfilter"
	"nrw/pkg/logger"
	"nrw/pkg/models"
	"nrw/pkg/queue"
	"nrw/services/moderation/repository"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderationRepo repository.ModerationRepository
	filter         *contentfilter.Filter
	queueClient    *queue.Client
	logger         *logger.Logger
}

func NewModerationHandler(moderationRepo repository.ModerationRepository, filter *contentfilter.Filter, queueClient *queue.Client, logger *logger.Logger) *ModerationHandler {
	return &ModerationHandler{
		moderationRepo: moderationRepo,
		filter:         filter,
		queueClient:    queueClient,
		logger:         logger,
	}
}

type ReviewRequest struct {
	Status  string `json:"status" binding:"required,oneof=approved rejected"`
	Comment string `json:"comment"`
}

// ReviewPost godoc
// @Summary      Review a pending post
// @Description  Approve or reject a post. The decision is published so other services can react.
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path string true "Post ID"
// @Param        review body ReviewRequest true "Review decision"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /moderation/posts/{post_id}/review [post]
func (h *ModerationHandler) ReviewPost(c *gin.Context) {
	postID := c.Param("post_id")

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.moderationRepo.GetPostByID(postID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	status := models.PostStatus(req.Status)
	if err := h.moderationRepo.UpdatePostStatus(postID, status); err != nil {
		h.logger.Error("Failed to update post status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post status"})
		return
	}

	if h.queueClient != nil {
		if err := h.queueClient.PublishModerationEvent(c.Request.Context(), postID, post.AuthorID, string(status)); err != nil {
			h.logger.Warn("Review decision for post %s not published: %v", postID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post reviewed successfully",
		"post_id": postID,
		"status":  status,
	})
}

// GetPendingPosts godoc
// @Summary      List posts awaiting review
// @Tags         moderation
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of posts to return"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Router       /moderation/pending [get]
func (h *ModerationHandler) GetPendingPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, err := h.moderationRepo.GetPendingPosts(limit, offset)
	if err != nil {
		h.logger.Error("Failed to get pending posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get pending posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

type CheckRequest struct {
	Text string `json:"text" binding:"required"`
}

// CheckText godoc
// @Summary      Dry-run the content filter
// @Description  Runs the blocklist against the given text without storing anything. Useful for tuning entries against evasion attempts.
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        check body CheckRequest true "Text to check"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /moderation/check [post]
func (h *ModerationHandler) CheckText(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.filter.Check(req.Text)
	c.JSON(http.StatusOK, gin.H{
		"blocked": result.Hit,
		"reason":  result.Reason,
		"pattern": result.Pattern,
	})
}

// GetBlocklist godoc
// @Summary      List blocklist entries
// @Description  Returns the ordered blocklist entries the filter evaluates, first match wins.
// @Tags         moderation
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /moderation/blocklist [get]
func (h *ModerationHandler) GetBlocklist(c *gin.Context) {
	entries := h.filter.Entries()
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
