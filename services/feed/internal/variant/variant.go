package variant

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"nrw/services/feed/internal/ranking"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "feed.variant:"

// Store assigns each viewer a sticky feed-ordering variant. The first
// lookup flips an unweighted coin and persists the result; every later
// lookup returns the stored value. Anonymous viewers always get ranked and
// nothing is written.
type Store struct {
	redis *redis.Client

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStore takes the random source explicitly so tests can force both
// buckets.
func NewStore(redisClient *redis.Client, rng *rand.Rand) *Store {
	return &Store{redis: redisClient, rng: rng}
}

// VariantFor resolves the viewer's variant. On storage errors it degrades
// to ranked and reports the error so the caller can log it; the feed still
// renders.
func (s *Store) VariantFor(ctx context.Context, viewerID string) (ranking.Variant, error) {
	if viewerID == "" {
		return ranking.VariantRanked, nil
	}

	key := keyPrefix + viewerID
	stored, err := s.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		if v := ranking.Variant(stored); v == ranking.VariantChronological || v == ranking.VariantRanked {
			return v, nil
		}
		// Unknown stored value: fall through and reassign
	case err != redis.Nil:
		return ranking.VariantRanked, fmt.Errorf("failed to read variant for %s: %w", viewerID, err)
	}

	assigned := s.flip()
	if err := s.redis.Set(ctx, key, string(assigned), 0).Err(); err != nil {
		return assigned, fmt.Errorf("failed to persist variant for %s: %w", viewerID, err)
	}
	return assigned, nil
}

func (s *Store) flip() ranking.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng.Intn(2) == 0 {
		return ranking.VariantChronological
	}
	return ranking.VariantRanked
}
