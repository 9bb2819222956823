package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type OrganizationStatus string

const (
	OrganizationStatusPending  OrganizationStatus = "pending"
	OrganizationStatusApproved OrganizationStatus = "approved"
	OrganizationStatusRejected OrganizationStatus = "rejected"
)

type Organization struct {
	ID                   string             `db:"id" json:"id"`
	OwnerID              string             `db:"owner_id" json:"owner_id"`
	Name                 string             `db:"name" json:"name"`
	Description          *string            `db:"description" json:"description"`
	Status               OrganizationStatus `db:"status" json:"status"`
	VerificationDocument *string            `db:"verification_document" json:"verification_document"` // S3 object key

	// Category names are denormalized strings, matching listings and
	// requests. Renaming a category does not cascade here.
	AcceptedCategories     []string                  `db:"accepted_categories" json:"accepted_categories"`         // text[]
	RejectedCategories     []string                  `db:"rejected_categories" json:"rejected_categories"`         // text[]
	SubcategoryPreferences SubcategoryPreferenceList `db:"subcategory_preferences" json:"subcategory_preferences"` // jsonb

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubcategoryPreference holds an organization's fine-grained accept/reject
// lists for one category. A subcategory never appears on both sides; the
// toggle operations clear the opposite list.
type SubcategoryPreference struct {
	Category              string   `json:"category"`
	AcceptedSubcategories []string `json:"accepted_subcategories"`
	RejectedSubcategories []string `json:"rejected_subcategories"`
}

type SubcategoryPreferenceList []SubcategoryPreference

func (l SubcategoryPreferenceList) Value() (driver.Value, error) {
	if l == nil {
		l = SubcategoryPreferenceList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal subcategory preferences: %w", err)
	}
	return data, nil
}

func (l *SubcategoryPreferenceList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = SubcategoryPreferenceList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("cannot scan %T into SubcategoryPreferenceList", src)
}
