package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"givelocal/internal/matching"
	"givelocal/internal/utils"
	"givelocal/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs := s.aggregator.Snapshot().Organizations
	s.respondJSON(w, http.StatusOK, orgs)
}

func (s *Service) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.orgRepo.Organization(r.Context(), flow.Param(r.Context(), "orgID"))
	if err != nil {
		if errors.Is(err, types.ErrOrganizationNotFound) {
			s.respondError(w, http.StatusNotFound, "organization not found")
			return
		}
		s.logger.WithError(err).Error("failed to load organization")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, org)
}

// handleMatchOrganization answers whether an organization accepts a
// category/subcategory pair. Donors use it to pre-check before listing.
func (s *Service) handleMatchOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.orgRepo.Organization(r.Context(), flow.Param(r.Context(), "orgID"))
	if err != nil {
		if errors.Is(err, types.ErrOrganizationNotFound) {
			s.respondError(w, http.StatusNotFound, "organization not found")
			return
		}
		s.logger.WithError(err).Error("failed to load organization")
		s.internalServerError(w)
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		s.respondError(w, http.StatusBadRequest, "category is required")
		return
	}
	subcategory := r.URL.Query().Get("subcategory")

	decision := matching.Match(org, category, subcategory)
	s.respondJSON(w, http.StatusOK, map[string]string{"decision": string(decision)})
}

type profileForm struct {
	DisplayName string `form:"display_name" json:"display_name"`
	Address     string `form:"address" json:"address"`
}

func (s *Service) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var form profileForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	profile, err := s.profileRepo.Profile(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load profile")
		s.internalServerError(w)
		return
	}

	if name := strings.TrimSpace(form.DisplayName); name != "" {
		profile.DisplayName = name
	}
	if addr := strings.TrimSpace(form.Address); addr != "" {
		profile.Address = utils.StringPtr(addr)
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.profileRepo.Update(ctx, userID, profile)
	})

	s.respondJSON(w, statusForResult(result), result)
}

type organizationForm struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
}

func (s *Service) handleUpdateOrganizationProfile(w http.ResponseWriter, r *http.Request) {
	org, ok := s.ownOrganization(w, r)
	if !ok {
		return
	}

	var form organizationForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if name := strings.TrimSpace(form.Name); name != "" {
		org.Name = name
	}
	if desc := strings.TrimSpace(form.Description); desc != "" {
		org.Description = utils.StringPtr(desc)
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.orgRepo.Update(ctx, org.ID, org)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleAcceptCategory(w http.ResponseWriter, r *http.Request) {
	s.toggleCategory(w, r, matching.AcceptCategory)
}

func (s *Service) handleRejectCategory(w http.ResponseWriter, r *http.Request) {
	s.toggleCategory(w, r, matching.RejectCategory)
}

func (s *Service) handleClearCategory(w http.ResponseWriter, r *http.Request) {
	s.toggleCategory(w, r, matching.ClearCategory)
}

func (s *Service) toggleCategory(w http.ResponseWriter, r *http.Request, apply func(*types.Organization, string)) {
	org, ok := s.ownOrganization(w, r)
	if !ok {
		return
	}

	name := flow.Param(r.Context(), "name")
	if !s.categoryExists(w, r, name) {
		return
	}

	apply(org, name)

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.orgRepo.UpdatePreferences(ctx, org.ID, org)
	})

	s.respondJSON(w, statusForResult(result), result)
}

type subcategoryToggleForm struct {
	Subcategory string `form:"subcategory" json:"subcategory"`
	Decision    string `form:"decision" json:"decision"` // accept | reject | clear
}

func (s *Service) handleToggleSubcategory(w http.ResponseWriter, r *http.Request) {
	org, ok := s.ownOrganization(w, r)
	if !ok {
		return
	}

	name := flow.Param(r.Context(), "name")

	var form subcategoryToggleForm
	if err := s.decodeForm(r, &form); err != nil || form.Subcategory == "" {
		s.respondError(w, http.StatusBadRequest, "subcategory is required")
		return
	}

	switch form.Decision {
	case "accept":
		matching.AcceptSubcategory(org, name, form.Subcategory)
	case "reject":
		matching.RejectSubcategory(org, name, form.Subcategory)
	default:
		s.respondError(w, http.StatusBadRequest, "decision must be accept or reject")
		return
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.orgRepo.UpdatePreferences(ctx, org.ID, org)
	})

	s.respondJSON(w, statusForResult(result), result)
}

type subcategoryBulkForm struct {
	Action string `form:"action" json:"action"` // accept_all | reject_all | clear
}

func (s *Service) handleBulkSubcategories(w http.ResponseWriter, r *http.Request) {
	org, ok := s.ownOrganization(w, r)
	if !ok {
		return
	}

	name := flow.Param(r.Context(), "name")

	category, err := s.categoryRepo.CategoryByName(r.Context(), name)
	if err != nil {
		s.logger.WithError(err).Error("failed to load category")
		s.internalServerError(w)
		return
	}
	if category == nil {
		s.respondError(w, http.StatusNotFound, "category not found")
		return
	}

	var form subcategoryBulkForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	switch form.Action {
	case "accept_all":
		matching.AcceptAllSubcategories(org, name, category.Subcategories)
	case "reject_all":
		matching.RejectAllSubcategories(org, name, category.Subcategories)
	case "clear":
		matching.ClearSubcategories(org, name)
	default:
		s.respondError(w, http.StatusBadRequest, "action must be accept_all, reject_all or clear")
		return
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.orgRepo.UpdatePreferences(ctx, org.ID, org)
	})

	s.respondJSON(w, statusForResult(result), result)
}

// ownOrganization loads the caller's organization record, writing the error
// response itself when the caller is not an organization account.
func (s *Service) ownOrganization(w http.ResponseWriter, r *http.Request) (*types.Organization, bool) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}

	org, err := s.orgRepo.OrganizationByOwner(r.Context(), userID)
	if err != nil {
		if errors.Is(err, types.ErrOrganizationNotFound) {
			s.respondError(w, http.StatusForbidden, "organization account required")
			return nil, false
		}
		s.logger.WithError(err).Error("failed to load organization")
		s.internalServerError(w)
		return nil, false
	}

	return org, true
}

func (s *Service) categoryExists(w http.ResponseWriter, r *http.Request, name string) bool {
	category, err := s.categoryRepo.CategoryByName(r.Context(), name)
	if err != nil {
		s.logger.WithError(err).Error("failed to load category")
		s.internalServerError(w)
		return false
	}
	if category == nil {
		s.respondError(w, http.StatusNotFound, "category not found")
		return false
	}
	return true
}
