package types

import "time"

type Category struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Subcategories []string  `db:"subcategories" json:"subcategories"` // text[]
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusApproved ProposalStatus = "approved"
	ProposalStatusRejected ProposalStatus = "rejected"
)

type CategoryProposal struct {
	ID             string         `db:"id" json:"id"`
	OrganizationID string         `db:"organization_id" json:"organization_id"`
	Category       string         `db:"category" json:"category"`
	Subcategory    *string        `db:"subcategory" json:"subcategory"`
	Justification  string         `db:"justification" json:"justification"`
	Status         ProposalStatus `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// ProposalView is a proposal with the proposing organization's name
// materialized for display.
type ProposalView struct {
	CategoryProposal
	OrganizationName string `db:"-" json:"organization_name"`
}
