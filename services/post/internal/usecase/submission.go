package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type SubmissionState string

const (
	SubmissionPending    SubmissionState = "pending"
	SubmissionConfirmed  SubmissionState = "confirmed"
	SubmissionRolledBack SubmissionState = "rolled_back"
)

// Submission tracks one post creation from the moment media work starts
// until the row exists (or doesn't). The temp ID is what a client can poll
// while the upload runs; Confirm swaps in the real post ID.
type Submission struct {
	TempID   string          `json:"temp_id"`
	PostID   string          `json:"post_id,omitempty"`
	State    SubmissionState `json:"state"`
	Progress float64         `json:"progress"`
	Error    string          `json:"error,omitempty"`
	started  time.Time
}

// SubmissionTracker is an in-memory registry of in-flight and recently
// finished submissions. Finished entries are kept for a grace period so a
// polling client sees the terminal state at least once.
type SubmissionTracker struct {
	mu      sync.Mutex
	entries map[string]*Submission
	ttl     time.Duration
	now     func() time.Time
}

func NewSubmissionTracker(ttl time.Duration) *SubmissionTracker {
	return &SubmissionTracker{
		entries: make(map[string]*Submission),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Begin registers a new pending submission and returns its temp ID.
func (t *SubmissionTracker) Begin() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep()

	tempID := uuid.New().String()
	t.entries[tempID] = &Submission{
		TempID:  tempID,
		State:   SubmissionPending,
		started: t.now(),
	}
	return tempID
}

// SetProgress records blended pipeline progress for a pending submission.
func (t *SubmissionTracker) SetProgress(tempID string, fraction float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.entries[tempID]; ok && s.State == SubmissionPending {
		s.Progress = fraction
	}
}

// Confirm moves a pending submission to confirmed with the stored post's
// real ID. Confirming a non-pending submission is a no-op.
func (t *SubmissionTracker) Confirm(tempID, postID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.entries[tempID]; ok && s.State == SubmissionPending {
		s.State = SubmissionConfirmed
		s.PostID = postID
		s.Progress = 1
		s.started = t.now()
	}
}

// RollBack marks a pending submission failed. Nothing it produced is
// referenced by any post row.
func (t *SubmissionTracker) RollBack(tempID string, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.entries[tempID]; ok && s.State == SubmissionPending {
		s.State = SubmissionRolledBack
		s.Error = reason
		s.started = t.now()
	}
}

// Get returns a snapshot of the submission, if still tracked.
func (t *SubmissionTracker) Get(tempID string) (Submission, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep()

	s, ok := t.entries[tempID]
	if !ok {
		return Submission{}, false
	}
	return *s, true
}

// sweep drops terminal entries older than the grace period. Callers hold
// the lock.
func (t *SubmissionTracker) sweep() {
	if t.ttl <= 0 {
		return
	}
	cutoff := t.now().Add(-t.ttl)
	for id, s := range t.entries {
		if s.State != SubmissionPending && s.started.Before(cutoff) {
			delete(t.entries, id)
		}
	}
}
