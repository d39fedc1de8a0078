package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"nrw/pkg/logger"
	"nrw/pkg/models"
	"nrw/services/post/internal/media"
	"nrw/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	Content string  `form:"content"`
	Preset  string  `form:"preset"`
	Zoom    float64 `form:"zoom"`
	PanX    float64 `form:"pan_x"`
	PanY    float64 `form:"pan_y"`
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Create a post with optional text and media. Attach up to 3 images, or exactly one video, never both. Crop parameters apply to all attached images. The response carries submission_id, pollable via GET /submissions/{id} while media work runs.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        content formData string false "Post text (max 2000 characters)"
// @Param        images formData file false "Image files (max 3)"
// @Param        video formData file false "Video file"
// @Param        preset formData string false "Crop preset" Enums(4:5, 1:1, 16:9)
// @Param        zoom formData number false "Crop zoom (1-3)"
// @Param        pan_x formData number false "Horizontal pan (-1 to 1)"
// @Param        pan_y formData number false "Vertical pan (-1 to 1)"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      413  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, cleanup, err := h.collectMedia(c, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer cleanup()

	var content *string
	if req.Content != "" {
		content = &req.Content
	}

	post, submissionID, err := h.postUseCase.CreatePost(c.Request.Context(), userID, usecase.CreateRequest{
		Content: content,
		Media:   input,
	})
	if err != nil {
		status, body := h.errorBody(err)
		if submissionID != "" {
			body["submission_id"] = submissionID
		}
		c.JSON(status, body)
		return
	}

	body := formatPost(post)
	body["submission_id"] = submissionID
	c.JSON(http.StatusCreated, body)
}

type UpdateProfileRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

// UpdateProfile godoc
// @Summary      Update own profile
// @Description  Partial update: only the supplied fields change. Username, display name and bio are each checked against the blocklist and rejected on a hit.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile body UpdateProfileRequest true "Fields to update"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /profile [put]
func (h *PostHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.postUseCase.UpdateProfile(c.Request.Context(), userID, usecase.ProfileUpdate{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"bio":          user.Bio,
		"avatar_url":   user.AvatarURL,
	})
}

// collectMedia reads the multipart attachments: image files into memory,
// a video spooled to a temp file for the encoder.
func (h *PostHandler) collectMedia(c *gin.Context, req CreatePostRequest) (media.Input, func(), error) {
	var input media.Input
	cleanup := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all: a text-only post.
		return input, cleanup, nil
	}

	for _, file := range form.File["images"] {
		data, err := readUpload(file)
		if err != nil {
			return input, cleanup, err
		}
		input.Photos = append(input.Photos, media.PhotoUpload{
			Name:   file.Filename,
			Data:   data,
			Preset: media.Preset(req.Preset),
			Zoom:   req.Zoom,
			PanX:   req.PanX,
			PanY:   req.PanY,
		})
	}

	if videos := form.File["video"]; len(videos) > 0 {
		path, err := spoolUpload(videos[0])
		if err != nil {
			return input, cleanup, err
		}
		cleanup = func() { os.RemoveAll(filepath.Dir(path)) }
		input.Video = &media.VideoUpload{Name: videos[0].Filename, Path: path}
	}

	return input, cleanup, nil
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

func spoolUpload(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dir, err := os.MkdirTemp("", "nrw-video-")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(file.Filename))
	dst, err := os.Create(path)
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}

// GetPost godoc
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	viewerID := c.GetString("user_id")

	post, isLiked, err := h.postUseCase.GetPost(c.Request.Context(), c.Param("id"), viewerID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	body := formatPost(post)
	body["is_liked"] = isLiked
	c.JSON(http.StatusOK, body)
}

// ListPosts godoc
// @Summary      List visible posts
// @Description  Newest-first approved posts, plus the viewer's own pending and rejected posts.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of posts to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	viewerID := c.GetString("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, err := h.postUseCase.ListPosts(c.Request.Context(), viewerID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
		return
	}

	formatted := make([]gin.H, len(posts))
	for i, p := range posts {
		formatted[i] = formatPost(p)
	}
	c.JSON(http.StatusOK, gin.H{"posts": formatted, "count": len(formatted), "offset": offset})
}

// DeletePost godoc
// @Summary      Delete own post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.postUseCase.DeletePost(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// LikePost godoc
// @Summary      Toggle a like
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/like [post]
func (h *PostHandler) LikePost(c *gin.Context) {
	userID := c.GetString("user_id")

	liked, err := h.postUseCase.LikePost(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// GetSubmission godoc
// @Summary      Poll a submission's progress
// @Description  Returns the state and blended progress of an in-flight post submission.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Submission temp ID"
// @Success      200  {object}  usecase.Submission
// @Failure      404  {object}  map[string]string
// @Router       /submissions/{id} [get]
func (h *PostHandler) GetSubmission(c *gin.Context) {
	sub, ok := h.postUseCase.GetSubmission(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *PostHandler) writeError(c *gin.Context, err error) {
	status, body := h.errorBody(err)
	c.JSON(status, body)
}

func (h *PostHandler) errorBody(err error) (int, gin.H) {
	var blocked *usecase.BlockedContentError
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized, gin.H{"error": err.Error()}
	case errors.As(err, &blocked):
		return http.StatusUnprocessableEntity, gin.H{"error": blocked.Error(), "reason": blocked.Reason, "field": blocked.Field}
	case errors.Is(err, usecase.ErrContentTooLong),
		errors.Is(err, usecase.ErrMissingContent),
		errors.Is(err, usecase.ErrTooManyImages),
		errors.Is(err, usecase.ErrMixedMedia),
		errors.Is(err, usecase.ErrInvalidUsername):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	case errors.Is(err, usecase.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()}
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": err.Error()}
	case errors.Is(err, usecase.ErrNotOwner):
		return http.StatusForbidden, gin.H{"error": err.Error()}
	default:
		h.logger.Error("Post operation failed: %v", err)
		return http.StatusInternalServerError, gin.H{"error": "Internal error"}
	}
}

func formatPost(post *models.Post) gin.H {
	body := gin.H{
		"id":             post.ID,
		"author_id":      post.AuthorID,
		"content":        post.Content,
		"media_type":     post.MediaType,
		"media_urls":     post.MediaURLs(),
		"status":         post.Status,
		"likes_count":    post.LikesCount,
		"comments_count": post.CommentsCount,
		"created_at":     post.CreatedAt,
		"updated_at":     post.UpdatedAt,
	}
	return body
}
