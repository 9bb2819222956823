package types

import "time"

type NotificationType string

const (
	NotificationTypeApproval     NotificationType = "approval"
	NotificationTypeDonation     NotificationType = "donation"
	NotificationTypeChat         NotificationType = "chat"
	NotificationTypePickup       NotificationType = "pickup"
	NotificationTypeVolunteer    NotificationType = "volunteer"
	NotificationTypeCrowdfunding NotificationType = "crowdfunding"
	NotificationTypeSystem       NotificationType = "system"
)

type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Read      bool             `db:"read" json:"read"`
	Link      *string          `db:"link" json:"link"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
