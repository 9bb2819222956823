package types

import "time"

type ProfileStatus string

const (
	ProfileStatusPending  ProfileStatus = "pending"
	ProfileStatusActive   ProfileStatus = "active"
	ProfileStatusRejected ProfileStatus = "rejected"
)

type Role string

const (
	RoleUser         Role = "user"
	RoleBeneficiary  Role = "beneficiary"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBeneficiary, RoleOrganization, RoleAdmin:
		return true
	}
	return false
}

type Profile struct {
	ID                   string        `db:"id" json:"id"`
	Email                string        `db:"email" json:"email"`
	DisplayName          string        `db:"display_name" json:"display_name"`
	Status               ProfileStatus `db:"status" json:"status"`
	IsBanned             bool          `db:"is_banned" json:"is_banned"`
	VerificationDocument *string       `db:"verification_document" json:"verification_document"` // S3 object key

	// Beneficiary-only fields
	NRIC              *string    `db:"nric" json:"nric"`
	Address           *string    `db:"address" json:"address"`
	Birthdate         *time.Time `db:"birthdate" json:"birthdate"`
	DeclarationAgreed bool       `db:"declaration_agreed" json:"declaration_agreed"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type UserRole struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AccountUser is the merged profile+role view the rest of the application
// treats as "the current user". It only exists once both records loaded.
type AccountUser struct {
	Profile
	Role Role `db:"-" json:"role"`
}
