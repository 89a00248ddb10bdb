package models

import "time"

// ContestCreate is the payload for creating a contest.
type ContestCreate struct {
	ProjectID string `json:"project_id" binding:"required"`
	Name      string `json:"name" binding:"required,min=3,max=100"`
	OwnerID   int64  `json:"owner_id" binding:"required"`

	StartMode        StartMode `json:"start_mode" binding:"required,oneof=new_post existing_post"`
	ExistingPostLink string    `json:"existing_post_link"`
	PostText         string    `json:"post_text"`
	PostAttachments  string    `json:"post_attachments"`
	StartDate        time.Time `json:"start_date" binding:"required"`

	Schema ConditionSchema `json:"schema" binding:"required"`

	FinishMode          FinishMode `json:"finish_mode" binding:"required,oneof=date duration"`
	FinishDate          *time.Time `json:"finish_date"`
	FinishDurationHours int        `json:"finish_duration_hours" binding:"min=0"`

	WinnersCount      int  `json:"winners_count" binding:"required,min=1"`
	OnePrizePerPerson bool `json:"one_prize_per_person"`

	IsCyclic          bool `json:"is_cyclic"`
	RestartDelayHours int  `json:"restart_delay_hours" binding:"min=0"`

	ResultPostTemplate      string `json:"result_post_template"`
	DirectMessageTemplate   string `json:"direct_message_template"`
	FallbackCommentTemplate string `json:"fallback_comment_template"`
}

// ContestUpdate is the payload for a partial contest update. Nil fields
// are left untouched.
type ContestUpdate struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=3,max=100"`
	IsActive *bool   `json:"is_active,omitempty"`
	OwnerID  *int64  `json:"owner_id,omitempty"`

	StartMode        *StartMode `json:"start_mode,omitempty" binding:"omitempty,oneof=new_post existing_post"`
	ExistingPostLink *string    `json:"existing_post_link,omitempty"`
	PostText         *string    `json:"post_text,omitempty"`
	PostAttachments  *string    `json:"post_attachments,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`

	Schema *ConditionSchema `json:"schema,omitempty"`

	FinishMode          *FinishMode `json:"finish_mode,omitempty" binding:"omitempty,oneof=date duration"`
	FinishDate          *time.Time  `json:"finish_date,omitempty"`
	FinishDurationHours *int        `json:"finish_duration_hours,omitempty"`

	WinnersCount      *int  `json:"winners_count,omitempty" binding:"omitempty,min=1"`
	OnePrizePerPerson *bool `json:"one_prize_per_person,omitempty"`

	IsCyclic          *bool `json:"is_cyclic,omitempty"`
	RestartDelayHours *int  `json:"restart_delay_hours,omitempty"`

	ResultPostTemplate      *string `json:"result_post_template,omitempty"`
	DirectMessageTemplate   *string `json:"direct_message_template,omitempty"`
	FallbackCommentTemplate *string `json:"fallback_comment_template,omitempty"`
}

// PromoCodeCreate is the payload for adding one promo code.
type PromoCodeCreate struct {
	Code        string `json:"code" binding:"required,min=1,max=128"`
	Description string `json:"description" binding:"max=500"`
}

// PromoCodeUpdate allows cosmetic edits only; issuance state is immutable
// through this path.
type PromoCodeUpdate struct {
	Description *string `json:"description,omitempty" binding:"omitempty,max=500"`
}

// PromoCodeBulkImport imports many codes sharing one description.
type PromoCodeBulkImport struct {
	Codes       []string `json:"codes" binding:"required,min=1,dive,min=1,max=128"`
	Description string   `json:"description" binding:"max=500"`
}

// BlacklistCreate is the payload for banning a user in a project.
type BlacklistCreate struct {
	UserID    int64      `json:"user_id" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
	Note      string     `json:"note" binding:"max=500"`
}
