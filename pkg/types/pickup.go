package types

import "time"

type PickupStatus string

const (
	PickupStatusPending   PickupStatus = "pending"
	PickupStatusAccepted  PickupStatus = "accepted"
	PickupStatusRejected  PickupStatus = "rejected"
	PickupStatusCompleted PickupStatus = "completed"
)

type PickupRequest struct {
	ID              string       `db:"id" json:"id"`
	ListingID       string       `db:"listing_id" json:"listing_id"`
	RequesterID     string       `db:"requester_id" json:"requester_id"`
	ProposedTime    time.Time    `db:"proposed_time" json:"proposed_time"`
	AlternativeTime *time.Time   `db:"alternative_time" json:"alternative_time"`
	Message         *string      `db:"message" json:"message"`
	Status          PickupStatus `db:"status" json:"status"`
	ResponseMessage *string      `db:"response_message" json:"response_message"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

type PickupMessage struct {
	ID        string    `db:"id" json:"id"`
	RequestID string    `db:"request_id" json:"request_id"`
	SenderID  string    `db:"sender_id" json:"sender_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
