// Package moderation owns the admin-side state transitions: item-request
// review, beneficiary and organization approval, and category-proposal
// handling. Every approval or rejection notifies the affected user.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"givelocal/pkg/types"

	"github.com/sirupsen/logrus"
)

type CategoryStore interface {
	CategoryByName(ctx context.Context, name string) (*types.Category, error)
	CreateCategory(ctx context.Context, category *types.Category) error
	SetSubcategories(ctx context.Context, categoryID string, subcategories []string) error
}

type ProposalStore interface {
	Proposal(ctx context.Context, proposalID string) (*types.CategoryProposal, error)
	SetStatus(ctx context.Context, proposalID string, status types.ProposalStatus) error
}

type ItemRequestStore interface {
	Request(ctx context.Context, requestID string) (*types.ItemRequest, error)
	Create(ctx context.Context, request *types.ItemRequest) error
	SetModeration(ctx context.Context, requestID string, status types.ModerationStatus, note *string) error
}

type OrganizationStore interface {
	Organization(ctx context.Context, orgID string) (*types.Organization, error)
	SetStatusWithProfileCascade(ctx context.Context, orgID, ownerID string, orgStatus types.OrganizationStatus, profileStatus types.ProfileStatus) error
}

type ProfileStore interface {
	Profile(ctx context.Context, profileID string) (*types.Profile, error)
	SetStatus(ctx context.Context, profileID string, status types.ProfileStatus) error
	SetBanned(ctx context.Context, profileID string, banned bool) error
}

// Notifier delivers a user-targeted notification. Delivery failures are the
// notifier's problem; moderation treats them as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, userID string, kind types.NotificationType, title, message string, link *string) error
}

var ErrRejectionNoteRequired = errors.New("a rejection note is required")

type Service struct {
	logger        *logrus.Logger
	categories    CategoryStore
	proposals     ProposalStore
	requests      ItemRequestStore
	organizations OrganizationStore
	profiles      ProfileStore
	notifier      Notifier
}

func NewService(
	logger *logrus.Logger,
	categories CategoryStore,
	proposals ProposalStore,
	requests ItemRequestStore,
	organizations OrganizationStore,
	profiles ProfileStore,
	notifier Notifier,
) *Service {
	return &Service{
		logger:        logger,
		categories:    categories,
		proposals:     proposals,
		requests:      requests,
		organizations: organizations,
		profiles:      profiles,
		notifier:      notifier,
	}
}

// SubmitItemRequest applies the auto-approval rule before inserting: a
// category that string-matches a global category is approved on the spot,
// anything else waits for an admin and is flagged as custom.
func (s *Service) SubmitItemRequest(ctx context.Context, request *types.ItemRequest) error {
	category, err := s.categories.CategoryByName(ctx, request.Category)
	if err != nil {
		return fmt.Errorf("check category allowlist: %w", err)
	}

	if category != nil {
		request.ModerationStatus = types.ModerationStatusApproved
		request.IsCustomCategory = false
	} else {
		request.ModerationStatus = types.ModerationStatusPending
		request.IsCustomCategory = true
	}
	request.Status = types.RequestStatusActive

	return s.requests.Create(ctx, request)
}

func (s *Service) ApproveItemRequest(ctx context.Context, requestID string) error {
	request, err := s.requests.Request(ctx, requestID)
	if err != nil {
		return err
	}

	if err := s.requests.SetModeration(ctx, requestID, types.ModerationStatusApproved, nil); err != nil {
		return err
	}

	s.notify(ctx, request.UserID, types.NotificationTypeApproval,
		"Request approved",
		fmt.Sprintf("Your request %q has been approved and is now visible to donors.", request.Title),
		nil)

	return nil
}

func (s *Service) RejectItemRequest(ctx context.Context, requestID, note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return ErrRejectionNoteRequired
	}

	request, err := s.requests.Request(ctx, requestID)
	if err != nil {
		return err
	}

	if err := s.requests.SetModeration(ctx, requestID, types.ModerationStatusRejected, &note); err != nil {
		return err
	}

	s.notify(ctx, request.UserID, types.NotificationTypeApproval,
		"Request rejected",
		fmt.Sprintf("Your request %q was rejected: %s", request.Title, note),
		nil)

	return nil
}

// ApproveOrganization flips the organization to approved and the owning
// profile to active in one transaction, then notifies the owner.
func (s *Service) ApproveOrganization(ctx context.Context, orgID string) error {
	org, err := s.organizations.Organization(ctx, orgID)
	if err != nil {
		return err
	}

	err = s.organizations.SetStatusWithProfileCascade(ctx, orgID, org.OwnerID,
		types.OrganizationStatusApproved, types.ProfileStatusActive)
	if err != nil {
		return err
	}

	s.notify(ctx, org.OwnerID, types.NotificationTypeApproval,
		"Organization approved",
		fmt.Sprintf("%s has been approved. You can now receive donations.", org.Name),
		nil)

	return nil
}

func (s *Service) RejectOrganization(ctx context.Context, orgID string) error {
	org, err := s.organizations.Organization(ctx, orgID)
	if err != nil {
		return err
	}

	err = s.organizations.SetStatusWithProfileCascade(ctx, orgID, org.OwnerID,
		types.OrganizationStatusRejected, types.ProfileStatusRejected)
	if err != nil {
		return err
	}

	s.notify(ctx, org.OwnerID, types.NotificationTypeApproval,
		"Organization rejected",
		fmt.Sprintf("The registration for %s was not approved.", org.Name),
		nil)

	return nil
}

func (s *Service) ApproveBeneficiary(ctx context.Context, profileID string) error {
	if err := s.profiles.SetStatus(ctx, profileID, types.ProfileStatusActive); err != nil {
		return err
	}

	s.notify(ctx, profileID, types.NotificationTypeApproval,
		"Account approved",
		"Your beneficiary account has been verified. You can now submit item requests.",
		nil)

	return nil
}

func (s *Service) RejectBeneficiary(ctx context.Context, profileID string) error {
	if err := s.profiles.SetStatus(ctx, profileID, types.ProfileStatusRejected); err != nil {
		return err
	}

	s.notify(ctx, profileID, types.NotificationTypeApproval,
		"Account rejected",
		"Your beneficiary application was not approved.",
		nil)

	return nil
}

// SetBanned touches only the ban flag; verification status is untouched.
func (s *Service) SetBanned(ctx context.Context, profileID string, banned bool) error {
	return s.profiles.SetBanned(ctx, profileID, banned)
}

// ApproveProposal merges a proposal into the global category set. A new
// category is created with the proposed subcategory as its only entry; an
// existing category gets the subcategory appended, skipping duplicates.
func (s *Service) ApproveProposal(ctx context.Context, proposalID string) error {
	proposal, err := s.proposals.Proposal(ctx, proposalID)
	if err != nil {
		return err
	}

	category, err := s.categories.CategoryByName(ctx, proposal.Category)
	if err != nil {
		return fmt.Errorf("look up proposed category: %w", err)
	}

	if category == nil {
		fresh := &types.Category{Name: proposal.Category, Subcategories: []string{}}
		if proposal.Subcategory != nil {
			fresh.Subcategories = []string{*proposal.Subcategory}
		}
		if err := s.categories.CreateCategory(ctx, fresh); err != nil {
			return err
		}
	} else if proposal.Subcategory != nil && !slices.Contains(category.Subcategories, *proposal.Subcategory) {
		subs := append(slices.Clone(category.Subcategories), *proposal.Subcategory)
		if err := s.categories.SetSubcategories(ctx, category.ID, subs); err != nil {
			return err
		}
	}

	if err := s.proposals.SetStatus(ctx, proposalID, types.ProposalStatusApproved); err != nil {
		return err
	}

	s.notifyOrganizationOwner(ctx, proposal.OrganizationID,
		"Category proposal approved",
		fmt.Sprintf("Your proposal for %q has been added to the global categories.", proposal.Category))

	return nil
}

func (s *Service) RejectProposal(ctx context.Context, proposalID string) error {
	proposal, err := s.proposals.Proposal(ctx, proposalID)
	if err != nil {
		return err
	}

	if err := s.proposals.SetStatus(ctx, proposalID, types.ProposalStatusRejected); err != nil {
		return err
	}

	s.notifyOrganizationOwner(ctx, proposal.OrganizationID,
		"Category proposal rejected",
		fmt.Sprintf("Your proposal for %q was not accepted.", proposal.Category))

	return nil
}

func (s *Service) notify(ctx context.Context, userID string, kind types.NotificationType, title, message string, link *string) {
	if err := s.notifier.Notify(ctx, userID, kind, title, message, link); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("failed to send moderation notification")
	}
}

func (s *Service) notifyOrganizationOwner(ctx context.Context, orgID, title, message string) {
	org, err := s.organizations.Organization(ctx, orgID)
	if err != nil {
		s.logger.WithError(err).WithField("organization_id", orgID).Warn("failed to load organization for notification")
		return
	}

	s.notify(ctx, org.OwnerID, types.NotificationTypeApproval, title, message, nil)
}
