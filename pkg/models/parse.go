package models

import (
	"fmt"
	"time"
)

// ParseError reports a row field the parser could not accept.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse post: field %q: %s", e.Field, e.Reason)
}

// ParsePost converts a loosely-typed row, as it comes back from the Redis
// feed cache or a JSON body, into a typed Post. Rows drift across schema
// versions, so optional fields default instead of failing: missing counters
// are 0, an unparseable created_at is the zero time. Only id and author_id
// are required.
func ParsePost(row map[string]interface{}) (*Post, error) {
	id, ok := stringField(row["id"])
	if !ok || id == "" {
		return nil, &ParseError{Field: "id", Reason: "missing or not a string"}
	}
	authorID, ok := stringField(row["author_id"])
	if !ok || authorID == "" {
		return nil, &ParseError{Field: "author_id", Reason: "missing or not a string"}
	}

	post := &Post{
		ID:            id,
		AuthorID:      authorID,
		LikesCount:    intField(row["likes_count"]),
		CommentsCount: intField(row["comments_count"]),
		CreatedAt:     timeField(row["created_at"]),
	}

	if content, ok := stringField(row["content"]); ok && content != "" {
		post.Content = &content
	}
	if mediaURL, ok := stringField(row["media_url"]); ok && mediaURL != "" {
		post.MediaURL = &mediaURL
	}
	if mt, ok := stringField(row["media_type"]); ok {
		switch MediaType(mt) {
		case MediaTypeImage, MediaTypeVideo, MediaTypeNone:
			post.MediaType = MediaType(mt)
		default:
			return nil, &ParseError{Field: "media_type", Reason: fmt.Sprintf("unknown value %q", mt)}
		}
	}
	if st, ok := stringField(row["status"]); ok && st != "" {
		switch PostStatus(st) {
		case StatusPending, StatusApproved, StatusRejected:
			post.Status = PostStatus(st)
		default:
			return nil, &ParseError{Field: "status", Reason: fmt.Sprintf("unknown value %q", st)}
		}
	} else {
		post.Status = StatusPending
	}

	return post, nil
}

func stringField(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func intField(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func timeField(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse("2006-01-02 15:04:05.999999999-07:00", t); err == nil {
			return parsed
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
