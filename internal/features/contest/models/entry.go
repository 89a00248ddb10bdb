package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ValidationData records which condition group admitted the entry and the
// conditions that were satisfied. Exactly one group is recorded: the first
// group that admits the user wins, groups are not merged.
type ValidationData struct {
	GroupIndex int      `json:"group_index"`
	Conditions []string `json:"conditions"`
}

func (v ValidationData) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *ValidationData) Scan(value interface{}) error {
	return scanJSON(value, v)
}

// Entry is a candidate participant of one cycle. Entries are created in
// bulk by the collector (full replace per run) and consumed by the
// finalizer.
type Entry struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	CycleID string `gorm:"index;not null" json:"cycle_id"`
	Cycle   *Cycle `gorm:"foreignKey:CycleID;constraint:OnDelete:CASCADE" json:"-"`

	UserID   int64  `gorm:"index" json:"user_id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`

	Validation ValidationData `gorm:"type:jsonb" json:"validation"`

	CreatedAt time.Time `json:"created_at"`
}
