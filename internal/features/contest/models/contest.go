package models

import (
	"errors"
	"time"
)

var (
	ErrInvalidWinnersCount = errors.New("winners count must be greater than 0")
	ErrMissingOwner        = errors.New("contest owner id is required")
	ErrMissingPostLink     = errors.New("existing-post mode requires a post link")
	ErrMissingFinishDate   = errors.New("date finish mode requires a finish date")
)

// StartMode selects how a cycle gets its start post.
type StartMode string

const (
	StartModeNewPost      StartMode = "new_post"      // engine schedules the start post itself
	StartModeExistingPost StartMode = "existing_post" // an already-published post is the trigger
)

// FinishMode selects how a cycle's end time is computed.
type FinishMode string

const (
	FinishModeDate     FinishMode = "date"     // fixed calendar date
	FinishModeDuration FinishMode = "duration" // hours after the real start
)

// ContestStatus is the operator-visible health of the contest.
type ContestStatus string

const (
	ContestStatusOK    ContestStatus = "ok"
	ContestStatusError ContestStatus = "error"
)

// Contest is the persistent contest configuration. It is mutated only via
// explicit update operations and read by every other component.
type Contest struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	ProjectID string `gorm:"index;not null" json:"project_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`

	// Platform owner (negative for communities) that hosts contest posts.
	OwnerID int64 `json:"owner_id"`

	StartMode        StartMode `json:"start_mode"`
	ExistingPostLink string    `json:"existing_post_link,omitempty"`
	PostText         string    `json:"post_text"`
	PostAttachments  string    `json:"post_attachments,omitempty"`
	StartDate        time.Time `json:"start_date"`

	Schema ConditionSchema `gorm:"type:jsonb" json:"schema"`

	FinishMode          FinishMode `json:"finish_mode"`
	FinishDate          *time.Time `json:"finish_date,omitempty"`
	FinishDurationHours int        `json:"finish_duration_hours,omitempty"`

	WinnersCount      int  `json:"winners_count"`
	OnePrizePerPerson bool `json:"one_prize_per_person"`

	IsCyclic          bool `json:"is_cyclic"`
	RestartDelayHours int  `json:"restart_delay_hours,omitempty"`

	ResultPostTemplate      string `json:"result_post_template"`
	DirectMessageTemplate   string `json:"direct_message_template"`
	FallbackCommentTemplate string `json:"fallback_comment_template,omitempty"`

	Status       ContestStatus `json:"status"`
	ErrorDetails string        `json:"error_details,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Contest) Validate() error {
	if c.OwnerID == 0 {
		return ErrMissingOwner
	}
	if c.WinnersCount <= 0 {
		return ErrInvalidWinnersCount
	}
	if c.StartMode == StartModeExistingPost && c.ExistingPostLink == "" {
		return ErrMissingPostLink
	}
	if c.FinishMode == FinishModeDate && c.FinishDate == nil {
		return ErrMissingFinishDate
	}
	return c.Schema.Validate()
}
