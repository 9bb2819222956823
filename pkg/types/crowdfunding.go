package types

import "time"

type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

type CrowdfundingCampaign struct {
	ID               string         `db:"id" json:"id"`
	OrganizationID   string         `db:"organization_id" json:"organization_id"`
	Title            string         `db:"title" json:"title"`
	Description      *string        `db:"description" json:"description"`
	GoalAmountCents  int64          `db:"goal_amount_cents" json:"goal_amount_cents"`
	RaisedCents      int64          `db:"raised_cents" json:"raised_cents"`
	Status           CampaignStatus `db:"status" json:"status"`
	EndsAt           *time.Time     `db:"ends_at" json:"ends_at"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

type CrowdfundingDonation struct {
	ID              string    `db:"id" json:"id"`
	CampaignID      string    `db:"campaign_id" json:"campaign_id"`
	DonorID         string    `db:"donor_id" json:"donor_id"`
	AmountCents     int64     `db:"amount_cents" json:"amount_cents"`
	PaymentIntentID *string   `db:"payment_intent_id" json:"payment_intent_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
