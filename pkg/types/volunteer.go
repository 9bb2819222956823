package types

import "time"

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

type VolunteerEvent struct {
	ID             string      `db:"id" json:"id"`
	OrganizationID string      `db:"organization_id" json:"organization_id"`
	Title          string      `db:"title" json:"title"`
	Description    *string     `db:"description" json:"description"`
	Location       *string     `db:"location" json:"location"`
	StartsAt       time.Time   `db:"starts_at" json:"starts_at"`
	Capacity       int         `db:"capacity" json:"capacity"`
	Status         EventStatus `db:"status" json:"status"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "registered"
	RegistrationStatusAttended   RegistrationStatus = "attended"
	RegistrationStatusCancelled  RegistrationStatus = "cancelled"
)

type VolunteerRegistration struct {
	ID        string             `db:"id" json:"id"`
	EventID   string             `db:"event_id" json:"event_id"`
	UserID    string             `db:"user_id" json:"user_id"`
	Status    RegistrationStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}
