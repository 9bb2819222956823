package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"givelocal/internal/utils"
	"givelocal/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleListListings(w http.ResponseWriter, r *http.Request) {
	// ?mine=1 narrows to the caller's own listings; everyone else sees
	// what is still available.
	if r.URL.Query().Get("mine") != "" {
		userID, err := s.userIDFromContext(r.Context())
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		listings, err := s.listingRepo.ListingsByDonor(r.Context(), userID)
		if err != nil {
			s.logger.WithError(err).Error("failed to load listings")
			s.internalServerError(w)
			return
		}

		s.respondJSON(w, http.StatusOK, listings)
		return
	}

	listings, err := s.listingRepo.AvailableListings(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load listings")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, listings)
}

func (s *Service) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := s.listingRepo.Listing(r.Context(), flow.Param(r.Context(), "listingID"))
	if err != nil {
		if errors.Is(err, types.ErrListingNotFound) {
			s.respondError(w, http.StatusNotFound, "listing not found")
			return
		}
		s.logger.WithError(err).Error("failed to load listing")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, listing)
}

type listingForm struct {
	Title          string   `form:"title" json:"title"`
	Description    string   `form:"description" json:"description"`
	Images         []string `form:"images" json:"images"` // S3 object keys from /documents
	Category       string   `form:"category" json:"category"`
	Subcategory    string   `form:"subcategory" json:"subcategory"`
	Condition      string   `form:"condition" json:"condition"`
	PickupLocation string   `form:"pickup_location" json:"pickup_location"`
}

func (s *Service) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var form listingForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	form.Title = strings.TrimSpace(form.Title)
	form.Category = strings.TrimSpace(form.Category)

	if form.Title == "" || form.Category == "" {
		s.respondError(w, http.StatusBadRequest, "title and category are required")
		return
	}

	condition := types.ItemCondition(form.Condition)
	if !condition.Valid() {
		s.respondError(w, http.StatusBadRequest, "condition must be new, like_new, good or fair")
		return
	}

	listing := &types.DonationListing{
		DonorID:   userID,
		Title:     form.Title,
		Images:    form.Images,
		Category:  form.Category,
		Condition: condition,
	}
	if desc := strings.TrimSpace(form.Description); desc != "" {
		listing.Description = utils.StringPtr(desc)
	}
	if sub := strings.TrimSpace(form.Subcategory); sub != "" {
		listing.Subcategory = utils.StringPtr(sub)
	}
	if loc := strings.TrimSpace(form.PickupLocation); loc != "" {
		listing.PickupLocation = utils.StringPtr(loc)
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.listingRepo.Create(ctx, listing)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	listing, ok := s.ownListing(w, r)
	if !ok {
		return
	}

	var form listingForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if title := strings.TrimSpace(form.Title); title != "" {
		listing.Title = title
	}
	if desc := strings.TrimSpace(form.Description); desc != "" {
		listing.Description = utils.StringPtr(desc)
	}
	if len(form.Images) > 0 {
		listing.Images = form.Images
	}
	if sub := strings.TrimSpace(form.Subcategory); sub != "" {
		listing.Subcategory = utils.StringPtr(sub)
	}
	if loc := strings.TrimSpace(form.PickupLocation); loc != "" {
		listing.PickupLocation = utils.StringPtr(loc)
	}
	if form.Condition != "" {
		condition := types.ItemCondition(form.Condition)
		if !condition.Valid() {
			s.respondError(w, http.StatusBadRequest, "condition must be new, like_new, good or fair")
			return
		}
		listing.Condition = condition
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.listingRepo.Update(ctx, listing.ID, listing)
	})

	s.respondJSON(w, statusForResult(result), result)
}

type listingStatusForm struct {
	Status string `form:"status" json:"status"`
}

func (s *Service) handleSetListingStatus(w http.ResponseWriter, r *http.Request) {
	listing, ok := s.ownListing(w, r)
	if !ok {
		return
	}

	var form listingStatusForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	status := types.ListingStatus(form.Status)
	switch status {
	case types.ListingStatusAvailable, types.ListingStatusRemoved:
	default:
		// Claimed is only reachable through the pickup flow.
		s.respondError(w, http.StatusBadRequest, "status must be available or removed")
		return
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.listingRepo.SetStatus(ctx, listing.ID, status)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	listing, ok := s.ownListing(w, r)
	if !ok {
		return
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.listingRepo.Delete(ctx, listing.ID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) ownListing(w http.ResponseWriter, r *http.Request) (*types.DonationListing, bool) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}

	listing, err := s.listingRepo.Listing(r.Context(), flow.Param(r.Context(), "listingID"))
	if err != nil {
		if errors.Is(err, types.ErrListingNotFound) {
			s.respondError(w, http.StatusNotFound, "listing not found")
			return nil, false
		}
		s.logger.WithError(err).Error("failed to load listing")
		s.internalServerError(w)
		return nil, false
	}

	if listing.DonorID != userID {
		s.respondError(w, http.StatusForbidden, "not your listing")
		return nil, false
	}

	return listing, true
}
