package models

import "time"

// BlacklistEntry is a project-scoped ban. A nil expiry is permanent.
// Expired entries are purged lazily on read paths.
type BlacklistEntry struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	ProjectID string `gorm:"index;not null" json:"project_id"`

	UserID    int64      `gorm:"index" json:"user_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Note      string     `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the ban has lapsed at the given moment.
func (b *BlacklistEntry) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && b.ExpiresAt.Before(now)
}
