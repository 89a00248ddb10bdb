package models

import "time"

// PromoCode is a single-use prize unit from a contest-scoped pool. A code
// is mutated exactly once, at issuance; after that only the description
// may change.
type PromoCode struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	ContestID string `gorm:"index;not null" json:"contest_id"`

	Code        string `gorm:"not null" json:"code"`
	Description string `json:"description,omitempty"`

	IsIssued bool       `gorm:"index" json:"is_issued"`
	IssuedAt *time.Time `json:"issued_at,omitempty"`

	// Denormalized winner identity, set at issuance.
	WinnerUserID int64   `json:"winner_user_id,omitempty"`
	WinnerName   string  `json:"winner_name,omitempty"`
	CycleID      *string `gorm:"index" json:"cycle_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
