package types

import "time"

type ItemCondition string

const (
	ConditionNew     ItemCondition = "new"
	ConditionLikeNew ItemCondition = "like_new"
	ConditionGood    ItemCondition = "good"
	ConditionFair    ItemCondition = "fair"
)

func (c ItemCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusClaimed   ListingStatus = "claimed"
	ListingStatusRemoved   ListingStatus = "removed"
)

type DonationListing struct {
	ID             string        `db:"id" json:"id"`
	DonorID        string        `db:"donor_id" json:"donor_id"`
	Title          string        `db:"title" json:"title"`
	Description    *string       `db:"description" json:"description"`
	Images         []string      `db:"images" json:"images"` // S3 object keys, text[]
	Category       string        `db:"category" json:"category"`
	Subcategory    *string       `db:"subcategory" json:"subcategory"`
	Condition      ItemCondition `db:"condition" json:"condition"`
	PickupLocation *string       `db:"pickup_location" json:"pickup_location"`
	Status         ListingStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}
