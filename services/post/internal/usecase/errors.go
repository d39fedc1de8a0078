package usecase

import (
	"errors"
	"fmt"
)

// Post creation fails with one of these. Handlers map them onto HTTP
// statuses; everything else surfaces as a 500.
var (
	ErrUnauthorized    = errors.New("authentication required")
	ErrContentTooLong  = fmt.Errorf("content exceeds %d characters", maxContentRunes)
	ErrMissingContent  = errors.New("post needs text or media")
	ErrTooManyImages   = errors.New("max 3 photos")
	ErrMixedMedia      = errors.New("cannot mix photos and video")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUploadFailed    = errors.New("upload failed")
	ErrInsertFailed    = errors.New("failed to store post")
	ErrNotFound        = errors.New("post not found")
	ErrNotOwner        = errors.New("you can only modify your own posts")
	ErrInvalidUsername = fmt.Errorf("username must be 1-%d characters", maxUsernameRunes)
)

// BlockedContentError reports which blocklist entry rejected the text.
type BlockedContentError struct {
	Field  string
	Reason string
}

func (e *BlockedContentError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Field, e.Reason)
}
