package ranking

import (
	"sort"
	"time"

	"nrw/pkg/models"
)

type Variant string

const (
	VariantChronological Variant = "chronological"
	VariantRanked        Variant = "ranked"
)

const (
	likeWeight    = 2
	commentWeight = 4
	followBonus   = 20
	recencyWindow = 24 // hours
)

// Score computes a post's relevance for one viewer at one instant.
//
//	likes*2 + comments*4 + (following author ? 20 : 0) + max(0, 24 - hoursSince)
//
// A future created_at clamps hoursSince to 0 (full recency bonus); a zero
// created_at, which is how an unparseable timestamp arrives, counts as 24h
// old and gets no bonus.
func Score(post *models.Post, followingIDs map[string]bool, now time.Time) float64 {
	score := float64(post.LikesCount*likeWeight + post.CommentsCount*commentWeight)
	if followingIDs[post.AuthorID] {
		score += followBonus
	}
	score += recencyBonus(post.CreatedAt, now)
	return score
}

func recencyBonus(createdAt time.Time, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	bonus := recencyWindow - hours
	if bonus < 0 {
		return 0
	}
	return bonus
}

// Order returns posts in display order for the given variant. The input
// slice is not mutated; ties keep their relative input order.
func Order(posts []*models.Post, followingIDs map[string]bool, variant Variant, now time.Time) []*models.Post {
	ordered := make([]*models.Post, len(posts))
	copy(ordered, posts)

	switch variant {
	case VariantChronological:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		})
	default:
		scores := make(map[string]float64, len(ordered))
		for _, p := range ordered {
			scores[p.ID] = Score(p, followingIDs, now)
		}
		sort.SliceStable(ordered, func(i, j int) bool {
			return scores[ordered[i].ID] > scores[ordered[j].ID]
		})
	}

	return ordered
}
