package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePost_FullRow(t *testing.T) {
	row := map[string]interface{}{
		"id":             "post-1",
		"author_id":      "user-1",
		"content":        "gm nrw",
		"media_url":      "http://example.com/a.jpg",
		"media_type":     "image",
		"status":         "approved",
		"likes_count":    float64(7), // JSON numbers decode to float64
		"comments_count": 2,
		"created_at":     "2026-08-30T12:00:00Z",
	}

	post, err := ParsePost(row)
	assert.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, "user-1", post.AuthorID)
	assert.Equal(t, "gm nrw", *post.Content)
	assert.Equal(t, MediaTypeImage, post.MediaType)
	assert.Equal(t, StatusApproved, post.Status)
	assert.Equal(t, 7, post.LikesCount)
	assert.Equal(t, 2, post.CommentsCount)
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), post.CreatedAt)
}

func TestParsePost_MissingID(t *testing.T) {
	_, err := ParsePost(map[string]interface{}{"author_id": "user-1"})
	assert.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "id", parseErr.Field)
}

func TestParsePost_MissingAuthor(t *testing.T) {
	_, err := ParsePost(map[string]interface{}{"id": "post-1"})
	assert.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "author_id", parseErr.Field)
}

func TestParsePost_DriftedRowDefaults(t *testing.T) {
	// Counters and timestamps missing entirely: defaults, not errors.
	post, err := ParsePost(map[string]interface{}{
		"id":        "post-1",
		"author_id": "user-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, post.LikesCount)
	assert.Equal(t, 0, post.CommentsCount)
	assert.True(t, post.CreatedAt.IsZero())
	assert.Nil(t, post.Content)
	assert.Nil(t, post.MediaURL)
	assert.Equal(t, StatusPending, post.Status)
}

func TestParsePost_BadCreatedAt(t *testing.T) {
	post, err := ParsePost(map[string]interface{}{
		"id":         "post-1",
		"author_id":  "user-1",
		"created_at": "not-a-timestamp",
	})
	assert.NoError(t, err)
	assert.True(t, post.CreatedAt.IsZero())
}

func TestParsePost_UnknownMediaType(t *testing.T) {
	_, err := ParsePost(map[string]interface{}{
		"id":         "post-1",
		"author_id":  "user-1",
		"media_type": "hologram",
	})
	assert.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "media_type", parseErr.Field)
}

func TestParsePost_UnknownStatus(t *testing.T) {
	_, err := ParsePost(map[string]interface{}{
		"id":        "post-1",
		"author_id": "user-1",
		"status":    "quarantined",
	})
	assert.Error(t, err)
}
