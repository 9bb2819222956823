package types

import "errors"

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrProposalNotFound     = errors.New("category proposal not found")
	ErrRequestNotFound      = errors.New("item request not found")
	ErrListingNotFound      = errors.New("donation listing not found")
	ErrPickupNotFound       = errors.New("pickup request not found")
	ErrEventNotFound        = errors.New("volunteer event not found")
	ErrCampaignNotFound     = errors.New("crowdfunding campaign not found")

	ErrListingUnavailable = errors.New("listing is no longer available")
	ErrEventFull          = errors.New("volunteer event is at capacity")

	ErrAccountBanned   = errors.New("account is banned")
	ErrAccountPending  = errors.New("account is pending approval")
	ErrAccountRejected = errors.New("account has been rejected")
)

// MutationResult is the shape every write operation reports back to the
// caller. Read failures never produce one; they are logged and absorbed.
type MutationResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func Succeeded() MutationResult {
	return MutationResult{Success: true}
}

func Failed(err error) MutationResult {
	return MutationResult{Success: false, Error: err.Error()}
}
