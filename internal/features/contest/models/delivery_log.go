package models

import "time"

// DeliveryStatus is the delivery state of one prize notification.
type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "pending"
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusError   DeliveryStatus = "error"
)

// DeliveryLog records one prize notification attempt. Rows are append-only
// except for the status transition on retry; the message text is
// snapshotted at issuance and re-sent verbatim on retry.
type DeliveryLog struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	ContestID string `gorm:"index;not null" json:"contest_id"`
	CycleID   string `gorm:"index" json:"cycle_id"`

	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name,omitempty"`

	PromoCode        string `json:"promo_code"`
	PrizeDescription string `json:"prize_description,omitempty"`
	MessageText      string `json:"message_text"`
	ResultsPostLink  string `json:"results_post_link,omitempty"`

	Status       DeliveryStatus `gorm:"index" json:"status"`
	ErrorDetails string         `json:"error_details,omitempty"`
	AttemptedAt  *time.Time     `json:"attempted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
