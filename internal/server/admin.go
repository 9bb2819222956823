package server

import (
	"context"
	"net/http"
	"strings"

	"givelocal/internal/moderation"
	"givelocal/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleAdminSnapshot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.aggregator.Snapshot())
}

func (s *Service) handleAdminRefresh(w http.ResponseWriter, r *http.Request) {
	s.aggregator.Refresh(r.Context())
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (s *Service) handleBanUser(w http.ResponseWriter, r *http.Request) {
	s.setBanned(w, r, true)
}

func (s *Service) handleUnbanUser(w http.ResponseWriter, r *http.Request) {
	s.setBanned(w, r, false)
}

func (s *Service) setBanned(w http.ResponseWriter, r *http.Request, banned bool) {
	userID := flow.Param(r.Context(), "userID")

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.moderation.SetBanned(ctx, userID, banned)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := flow.Param(r.Context(), "userID")

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		if err := s.roleRepo.Delete(ctx, userID); err != nil {
			return err
		}
		return s.profileRepo.Delete(ctx, userID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleApproveBeneficiary(w http.ResponseWriter, r *http.Request) {
	userID := flow.Param(r.Context(), "userID")

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.moderation.ApproveBeneficiary(ctx, userID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleRejectBeneficiary(w http.ResponseWriter, r *http.Request) {
	userID := flow.Param(r.Context(), "userID")

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.moderation.RejectBeneficiary(ctx, userID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleApproveOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := flow.Param(r.Context(), "orgID")

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.moderation.ApproveOrganization(ctx, orgID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleRejectOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := flow.Param(r.Context(), "orgID")

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.moderation.RejectOrganization(ctx, orgID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

type categoryForm struct {
	Name          string   `form:"name" json:"name"`
	Subcategories []string `form:"subcategories" json:"subcategories"`
}

func (s *Service) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var form categoryForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := &types.Category{
		Name:          form.Name,
		Subcategories: form.Subcategories,
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.categoryRepo.CreateCategory(ctx, category)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := flow.Param(r.Context(), "categoryID")

	var form categoryForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := &types.Category{
		Name:          form.Name,
		Subcategories: form.Subcategories,
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.categoryRepo.UpdateCategory(ctx, categoryID, category)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := flow.Param(r.Context(), "categoryID")

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.categoryRepo.DeleteCategory(ctx, categoryID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleApproveProposal(w http.ResponseWriter, r *http.Request) {
	proposalID := flow.Param(r.Context(), "proposalID")

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.moderation.ApproveProposal(ctx, proposalID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleRejectProposal(w http.ResponseWriter, r *http.Request) {
	proposalID := flow.Param(r.Context(), "proposalID")

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.moderation.RejectProposal(ctx, proposalID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	requestID := flow.Param(r.Context(), "requestID")

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.moderation.ApproveItemRequest(ctx, requestID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

type rejectRequestForm struct {
	Note string `form:"note" json:"note"`
}

func (s *Service) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	requestID := flow.Param(r.Context(), "requestID")

	var form rejectRequestForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.moderation.RejectItemRequest(ctx, requestID, form.Note)
	})

	if !result.Success && result.Error == moderation.ErrRejectionNoteRequired.Error() {
		s.respondError(w, http.StatusBadRequest, result.Error)
		return
	}

	s.respondJSON(w, statusForResult(result), result)
}
