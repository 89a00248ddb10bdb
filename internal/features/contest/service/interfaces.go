package service

import (
	"context"
	"time"

	"contest-engine-backend/internal/platform/vk"
)

// TriggerKind distinguishes the two trigger posts of a cycle.
type TriggerKind string

const (
	TriggerStart TriggerKind = "start"
	TriggerEnd   TriggerKind = "end"
)

// TriggerStatus mirrors the scheduling tracker's post lifecycle.
type TriggerStatus string

const (
	TriggerStatusPending   TriggerStatus = "pending_publication"
	TriggerStatusPaused    TriggerStatus = "paused"
	TriggerStatusPublished TriggerStatus = "published"
	TriggerStatusError     TriggerStatus = "error"
)

// TriggerPost is the engine's view of an externally-scheduled post: desired
// publication time, content and status. The tracker owns persistence and
// timing.
type TriggerPost struct {
	ID          string        `json:"id,omitempty"`
	ProjectID   string        `json:"project_id"`
	ContestID   string        `json:"contest_id"`
	CycleID     string        `json:"cycle_id"`
	Kind        TriggerKind   `json:"kind"`
	PublishAt   time.Time     `json:"publish_at"`
	Text        string        `json:"text"`
	Attachments string        `json:"attachments,omitempty"`
	Status      TriggerStatus `json:"status"`
}

// PostScheduler is the narrow interface to the scheduling/tracker service.
// UpsertPost is an idempotent upsert keyed by the post id; an empty id
// creates a new scheduled post and returns its id.
type PostScheduler interface {
	UpsertPost(ctx context.Context, post TriggerPost) (string, error)
	DeletePost(ctx context.Context, id string) error
	SetPostStatus(ctx context.Context, id string, status TriggerStatus, details string) error
}

// SocialClient is the narrow social-graph surface the engine consumes. All
// calls are fallible, non-transactional remote calls.
type SocialClient interface {
	FetchReactions(ctx context.Context, kind vk.ReactionKind, ownerID, postID int64, limit int) ([]vk.Reactor, error)
	PublishPost(ctx context.Context, ownerID int64, message string) (int64, error)
	SendDirectMessage(ctx context.Context, userID int64, message string) error
	CreateComment(ctx context.Context, ownerID, postID int64, message string) error
}

// Locker serializes contest-level mutations across instances.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}
