package types

import "time"

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

type RequestStatus string

const (
	RequestStatusActive    RequestStatus = "active"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusCancelled RequestStatus = "cancelled"
)

type ModerationStatus string

const (
	ModerationStatusPending  ModerationStatus = "pending"
	ModerationStatusApproved ModerationStatus = "approved"
	ModerationStatusRejected ModerationStatus = "rejected"
)

type ItemRequest struct {
	ID          string  `db:"id" json:"id"`
	UserID      string  `db:"user_id" json:"user_id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
	Category    string  `db:"category" json:"category"`
	Location    *string `db:"location" json:"location"`
	Urgency     Urgency `db:"urgency" json:"urgency"`

	// Lifecycle status is owner-controlled and independent of moderation.
	Status RequestStatus `db:"status" json:"status"`

	// ModerationStatus is approved at creation when the category matches a
	// global category, pending otherwise.
	ModerationStatus ModerationStatus `db:"moderation_status" json:"moderation_status"`
	IsCustomCategory bool             `db:"is_custom_category" json:"is_custom_category"`
	RejectionNote    *string          `db:"rejection_note" json:"rejection_note"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
