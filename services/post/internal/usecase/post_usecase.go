package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"nrw/pkg/contentfilter"
	"nrw/pkg/logger"
	"nrw/pkg/models"
	"nrw/pkg/queue"
	"nrw/services/post/internal/media"
	"nrw/services/post/internal/repo/persistent"

	"github.com/redis/go-redis/v9"
)

const (
	maxContentRunes     = 2000
	maxUsernameRunes    = 30
	maxDisplayNameRunes = 50
	maxBioRunes         = 500
	postCacheTTL        = 24 * time.Hour
	submissionTTL       = 10 * time.Minute
)

// CreateRequest is everything a post submission carries.
type CreateRequest struct {
	Content *string
	Media   media.Input
}

// ProfileUpdate carries a partial profile edit; nil fields stay untouched.
type ProfileUpdate struct {
	Username    *string
	DisplayName *string
	Bio         *string
}

type PostUseCase interface {
	CreatePost(ctx context.Context, userID string, req CreateRequest) (*models.Post, string, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error)
	GetPost(ctx context.Context, postID, viewerID string) (*models.Post, bool, error)
	ListPosts(ctx context.Context, viewerID string, limit, offset int) ([]*models.Post, error)
	DeletePost(ctx context.Context, postID, userID string) error
	LikePost(ctx context.Context, userID, postID string) (bool, error)
	GetSubmission(tempID string) (Submission, bool)
}

type postUseCase struct {
	postRepo    persistent.PostRepository
	filter      *contentfilter.Filter
	encoder     media.Encoder
	upload      media.UploadFunc
	redisClient *redis.Client
	queueClient *queue.Client
	submissions *SubmissionTracker
	logger      *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	filter *contentfilter.Filter,
	encoder media.Encoder,
	upload media.UploadFunc,
	redisClient *redis.Client,
	queueClient *queue.Client,
	log *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:    postRepo,
		filter:      filter,
		encoder:     encoder,
		upload:      upload,
		redisClient: redisClient,
		queueClient: queueClient,
		submissions: NewSubmissionTracker(submissionTTL),
		logger:      log,
	}
}

// CreatePost validates the submission, prepares and uploads its media, and
// only then inserts the row. Validation failures cost nothing; storage
// writes happen before the insert; an insert failure rolls the submission
// back so no post ever references a half-finished upload. The returned
// temp ID identifies the submission for GET /submissions polling; it is
// empty when the request was rejected before media work started.
func (uc *postUseCase) CreatePost(ctx context.Context, userID string, req CreateRequest) (*models.Post, string, error) {
	if userID == "" {
		return nil, "", ErrUnauthorized
	}

	hasMedia := len(req.Media.Photos) > 0 || req.Media.Video != nil
	if err := uc.validateContent(req.Content, hasMedia); err != nil {
		return nil, "", err
	}

	user, err := uc.postRepo.GetUser(userID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, "", ErrUnauthorized
		}
		return nil, "", fmt.Errorf("load author: %w", err)
	}

	tempID := uc.submissions.Begin()

	var (
		mediaType models.MediaType
		urls      []string
		mediaRows []models.PostMedia
	)
	if hasMedia {
		results, err := uc.runPipeline(ctx, tempID, req.Media)
		if err != nil {
			uc.submissions.RollBack(tempID, err.Error())
			return nil, tempID, err
		}
		for i, res := range results {
			urls = append(urls, res.URL)
			mediaRows = append(mediaRows, models.PostMedia{
				URL:       res.URL,
				Order:     i,
				SizeBytes: res.Bytes,
			})
		}
		if req.Media.Video != nil {
			mediaType = models.MediaTypeVideo
		} else {
			mediaType = models.MediaTypeImage
		}
	}

	mediaURL, err := models.EncodeMediaURLs(urls)
	if err != nil {
		uc.submissions.RollBack(tempID, err.Error())
		return nil, tempID, fmt.Errorf("encode media urls: %w", err)
	}

	status := models.StatusPending
	if user.IsReviewed {
		status = models.StatusApproved
	}

	post := &models.Post{
		AuthorID:  userID,
		Content:   req.Content,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		Status:    status,
	}

	if err := uc.postRepo.Create(post, mediaRows); err != nil {
		uc.submissions.RollBack(tempID, err.Error())
		uc.logger.Error("Post insert failed for user %s: %v", userID, err)
		return nil, tempID, fmt.Errorf("%w: %s", ErrInsertFailed, err)
	}
	uc.submissions.Confirm(tempID, post.ID)

	uc.cachePost(ctx, post)
	if status == models.StatusPending && uc.queueClient != nil {
		if err := uc.queueClient.PublishModerationEvent(ctx, post.ID, post.AuthorID, string(post.Status)); err != nil {
			uc.logger.Warn("Moderation event not published for post %s: %v", post.ID, err)
		}
	}

	return post, tempID, nil
}

// UpdateProfile applies a partial profile edit. Every supplied field runs
// through the content filter on its own, so a clean bio never slips past
// because the username was the offending part, and vice versa.
func (uc *postUseCase) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	user, err := uc.postRepo.GetUser(userID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if name == "" || utf8.RuneCountInString(name) > maxUsernameRunes {
			return nil, ErrInvalidUsername
		}
		if res := uc.filter.Check(name); res.Hit {
			return nil, &BlockedContentError{Field: "username", Reason: res.Reason}
		}
		user.Username = name
	}
	if upd.DisplayName != nil {
		if utf8.RuneCountInString(*upd.DisplayName) > maxDisplayNameRunes {
			return nil, ErrContentTooLong
		}
		if res := uc.filter.Check(*upd.DisplayName); res.Hit {
			return nil, &BlockedContentError{Field: "display_name", Reason: res.Reason}
		}
		user.DisplayName = *upd.DisplayName
	}
	if upd.Bio != nil {
		if utf8.RuneCountInString(*upd.Bio) > maxBioRunes {
			return nil, ErrContentTooLong
		}
		if res := uc.filter.Check(*upd.Bio); res.Hit {
			return nil, &BlockedContentError{Field: "bio", Reason: res.Reason}
		}
		user.Bio = *upd.Bio
	}

	if err := uc.postRepo.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (uc *postUseCase) validateContent(content *string, hasMedia bool) error {
	text := ""
	if content != nil {
		text = *content
	}
	if text == "" && !hasMedia {
		return ErrMissingContent
	}
	if utf8.RuneCountInString(text) > maxContentRunes {
		return ErrContentTooLong
	}
	if text != "" {
		if res := uc.filter.Check(text); res.Hit {
			return &BlockedContentError{Field: "content", Reason: res.Reason}
		}
	}
	return nil
}

// runPipeline builds a fresh pipeline per submission and mirrors its
// progress into the tracker so a client can poll the temp ID.
func (uc *postUseCase) runPipeline(ctx context.Context, tempID string, input media.Input) ([]media.Result, error) {
	pipeline := media.NewPipeline(uc.encoder, uc.upload)

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case fraction := <-pipeline.Progress():
				uc.submissions.SetProgress(tempID, fraction)
			case <-stop:
				return
			}
		}
	}()

	results, err := pipeline.Run(ctx, input)
	close(stop)
	if err != nil {
		return nil, mapPipelineError(err)
	}
	return results, nil
}

func mapPipelineError(err error) error {
	switch {
	case errors.Is(err, media.ErrTooManyImages):
		return ErrTooManyImages
	case errors.Is(err, media.ErrMixedMedia):
		return ErrMixedMedia
	case errors.Is(err, media.ErrVideoTooLarge):
		return fmt.Errorf("%w: %s", ErrFileTooLarge, err)
	case errors.Is(err, media.ErrUploadFailed):
		return fmt.Errorf("%w: %s", ErrUploadFailed, err)
	default:
		return err
	}
}

func (uc *postUseCase) GetPost(ctx context.Context, postID, viewerID string) (*models.Post, bool, error) {
	post, err := uc.postRepo.GetByID(postID)
	if errors.Is(err, persistent.ErrNotFound) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}

	// Pending and rejected posts are visible to their author only.
	if post.Status != models.StatusApproved && post.AuthorID != viewerID {
		return nil, false, ErrNotFound
	}

	isLiked := false
	if viewerID != "" {
		isLiked, _ = uc.postRepo.IsLiked(viewerID, postID)
	}
	return post, isLiked, nil
}

func (uc *postUseCase) ListPosts(ctx context.Context, viewerID string, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.postRepo.List(viewerID, limit, offset)
}

func (uc *postUseCase) DeletePost(ctx context.Context, postID, userID string) error {
	post, err := uc.postRepo.GetByID(postID)
	if errors.Is(err, persistent.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return ErrNotOwner
	}

	if err := uc.postRepo.Delete(postID); err != nil {
		return err
	}
	if uc.redisClient != nil {
		uc.redisClient.Del(ctx, postCacheKey(postID))
	}
	return nil
}

func (uc *postUseCase) LikePost(ctx context.Context, userID, postID string) (bool, error) {
	if userID == "" {
		return false, ErrUnauthorized
	}
	if _, err := uc.postRepo.GetByID(postID); err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}
	return uc.postRepo.ToggleLike(userID, postID)
}

func (uc *postUseCase) GetSubmission(tempID string) (Submission, bool) {
	return uc.submissions.Get(tempID)
}

func (uc *postUseCase) cachePost(ctx context.Context, post *models.Post) {
	if uc.redisClient == nil {
		return
	}
	data, err := json.Marshal(post)
	if err != nil {
		return
	}
	if err := uc.redisClient.Set(ctx, postCacheKey(post.ID), data, postCacheTTL).Err(); err != nil {
		uc.logger.Warn("Post cache write failed for %s: %v", post.ID, err)
	}
}

func postCacheKey(postID string) string {
	return "post:" + postID
}
