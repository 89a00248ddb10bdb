package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// CycleStatus is the lifecycle state of one contest run.
type CycleStatus string

const (
	CycleStatusCreated    CycleStatus = "created"
	CycleStatusActive     CycleStatus = "active"
	CycleStatusEvaluating CycleStatus = "evaluating"
	CycleStatusFinished   CycleStatus = "finished"
	CycleStatusArchived   CycleStatus = "archived"
)

// IsOpen reports whether the status counts against the one-open-cycle
// invariant.
func (s CycleStatus) IsOpen() bool {
	return s == CycleStatusCreated || s == CycleStatusActive || s == CycleStatusEvaluating
}

// OpenStatuses lists the statuses an "active cycle" lookup matches.
func OpenStatuses() []CycleStatus {
	return []CycleStatus{CycleStatusCreated, CycleStatusActive, CycleStatusEvaluating}
}

// WinnerRecord is one winner in the audit snapshot of a finished cycle.
type WinnerRecord struct {
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	PromoCode  string `json:"promo_code,omitempty"`
	GroupIndex int    `json:"group_index"`
}

// WinnersSnapshot is the JSON audit blob stored on a finished cycle.
type WinnersSnapshot []WinnerRecord

func (s WinnersSnapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *WinnersSnapshot) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Cycle is one concrete run of a contest. Cycles are never deleted by the
// engine, only archived.
type Cycle struct {
	ID        string   `gorm:"primaryKey;type:uuid" json:"id"`
	ContestID string   `gorm:"index;not null" json:"contest_id"`
	Contest   *Contest `gorm:"foreignKey:ContestID;constraint:OnDelete:CASCADE" json:"-"`

	Status CycleStatus `gorm:"index" json:"status"`

	// External scheduling entity ids for the two trigger posts.
	StartTriggerID string `json:"start_trigger_id,omitempty"`
	EndTriggerID   string `json:"end_trigger_id,omitempty"`

	// Platform owner/post pair once the start post is live. The owner may
	// differ from the contest owner for existing-post contests.
	PlatformOwnerID int64 `json:"platform_owner_id,omitempty"`
	PlatformPostID  int64 `json:"platform_post_id,omitempty"`
	ResultsPostID   int64 `json:"results_post_id,omitempty"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	ParticipantsCount int             `json:"participants_count"`
	Winners           WinnersSnapshot `gorm:"type:jsonb" json:"winners,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
