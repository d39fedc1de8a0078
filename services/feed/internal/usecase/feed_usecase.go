package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nrw/pkg/cache"
	"nrw/pkg/logger"
	"nrw/pkg/models"
	"nrw/services/feed/internal/ranking"
	"nrw/services/feed/internal/repo/persistent"

	"github.com/redis/go-redis/v9"
)

const (
	feedCacheTTL    = 10 * time.Minute
	followCacheTTL  = 5 * time.Minute
	feedFetchWindow = 200
)

// VariantStore resolves a viewer's sticky A/B ordering variant.
type VariantStore interface {
	VariantFor(ctx context.Context, viewerID string) (ranking.Variant, error)
}

type FeedUseCase interface {
	GetFeed(ctx context.Context, viewerID string, limit, offset int) ([]*models.Post, ranking.Variant, error)
	GetVariant(ctx context.Context, viewerID string) (ranking.Variant, error)
}

type feedUseCase struct {
	feedRepo    persistent.FeedRepository
	variants    VariantStore
	redisClient *redis.Client
	follows     *cache.TTLCache
	logger      *logger.Logger
	now         func() time.Time
}

func NewFeedUseCase(feedRepo persistent.FeedRepository, variants VariantStore, redisClient *redis.Client, log *logger.Logger) FeedUseCase {
	return &feedUseCase{
		feedRepo:    feedRepo,
		variants:    variants,
		redisClient: redisClient,
		follows:     cache.NewTTLCache(followCacheTTL),
		logger:      log,
		now:         time.Now,
	}
}

func (uc *feedUseCase) GetVariant(ctx context.Context, viewerID string) (ranking.Variant, error) {
	return uc.variants.VariantFor(ctx, viewerID)
}

func (uc *feedUseCase) GetFeed(ctx context.Context, viewerID string, limit, offset int) ([]*models.Post, ranking.Variant, error) {
	variant, err := uc.variants.VariantFor(ctx, viewerID)
	if err != nil {
		uc.logger.Warn("Variant lookup degraded for viewer %q: %v", viewerID, err)
	}

	cacheKey := feedCacheKey(viewerID, variant)
	if uc.redisClient != nil {
		if cached, err := uc.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			if posts, ok := uc.decodeCachedFeed(cached); ok {
				return paginate(posts, limit, offset), variant, nil
			}
		}
	}

	following := uc.followingSet(viewerID)

	posts, err := uc.feedRepo.GetVisiblePosts(viewerID, feedFetchWindow)
	if err != nil {
		return nil, variant, fmt.Errorf("failed to load posts: %w", err)
	}

	ordered := ranking.Order(posts, following, variant, uc.now())

	if uc.redisClient != nil && len(ordered) > 0 {
		if encoded, err := json.Marshal(encodeFeedRows(ordered)); err == nil {
			uc.redisClient.Set(ctx, cacheKey, encoded, feedCacheTTL)
		}
	}

	return paginate(ordered, limit, offset), variant, nil
}

// followingSet resolves the viewer's follow-set through a short-lived
// in-process cache so every feed render does not hit the follows table.
func (uc *feedUseCase) followingSet(viewerID string) map[string]bool {
	if viewerID == "" {
		return nil
	}

	cacheKey := "follows:" + viewerID
	if cached, ok := uc.follows.Get(cacheKey); ok {
		if set, ok := cached.(map[string]bool); ok {
			return set
		}
	}

	ids, err := uc.feedRepo.GetFollowingIDs(viewerID)
	if err != nil {
		uc.logger.Warn("Failed to load follow set for %s, ranking without follow bonus: %v", viewerID, err)
		return nil
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	uc.follows.Set(cacheKey, set)
	return set
}

// decodeCachedFeed parses cached loose rows back into typed posts. Rows
// that no longer parse (schema drift between deploys) are skipped, not
// fatal.
func (uc *feedUseCase) decodeCachedFeed(cached string) ([]*models.Post, bool) {
	var rows []map[string]interface{}
	if err := json.Unmarshal([]byte(cached), &rows); err != nil {
		return nil, false
	}

	posts := make([]*models.Post, 0, len(rows))
	for _, row := range rows {
		post, err := models.ParsePost(row)
		if err != nil {
			uc.logger.Warn("Dropping unparseable cached feed row: %v", err)
			continue
		}
		posts = append(posts, post)
	}
	if len(posts) == 0 {
		return nil, false
	}
	return posts, true
}

func encodeFeedRows(posts []*models.Post) []map[string]interface{} {
	rows := make([]map[string]interface{}, len(posts))
	for i, p := range posts {
		row := map[string]interface{}{
			"id":             p.ID,
			"author_id":      p.AuthorID,
			"media_type":     string(p.MediaType),
			"status":         string(p.Status),
			"likes_count":    p.LikesCount,
			"comments_count": p.CommentsCount,
			"created_at":     p.CreatedAt.Format(time.RFC3339Nano),
		}
		if p.Content != nil {
			row["content"] = *p.Content
		}
		if p.MediaURL != nil {
			row["media_url"] = *p.MediaURL
		}
		rows[i] = row
	}
	return rows
}

func paginate(posts []*models.Post, limit, offset int) []*models.Post {
	if offset >= len(posts) {
		return []*models.Post{}
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}

func feedCacheKey(viewerID string, variant ranking.Variant) string {
	if viewerID == "" {
		viewerID = "anonymous"
	}
	return fmt.Sprintf("feed:user:%s:%s", viewerID, variant)
}
