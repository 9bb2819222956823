package server

import (
	"context"
	"net/http"
	"strings"

	"givelocal/internal/utils"
	"givelocal/pkg/types"
)

func (s *Service) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.aggregator.Snapshot().Categories
	s.respondJSON(w, http.StatusOK, categories)
}

func (s *Service) handleListOwnProposals(w http.ResponseWriter, r *http.Request) {
	org, ok := s.ownOrganization(w, r)
	if !ok {
		return
	}

	proposals, err := s.proposalRepo.ProposalsByOrganization(r.Context(), org.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load proposals")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, proposals)
}

type proposalForm struct {
	Category      string `form:"category" json:"category"`
	Subcategory   string `form:"subcategory" json:"subcategory"`
	Justification string `form:"justification" json:"justification"`
}

func (s *Service) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	org, ok := s.ownOrganization(w, r)
	if !ok {
		return
	}

	var form proposalForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	form.Category = strings.TrimSpace(form.Category)
	form.Justification = strings.TrimSpace(form.Justification)

	if form.Category == "" || form.Justification == "" {
		s.respondError(w, http.StatusBadRequest, "category and justification are required")
		return
	}

	proposal := &types.CategoryProposal{
		OrganizationID: org.ID,
		Category:       form.Category,
		Justification:  form.Justification,
	}
	if sub := strings.TrimSpace(form.Subcategory); sub != "" {
		proposal.Subcategory = utils.StringPtr(sub)
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.proposalRepo.Create(ctx, proposal)
	})

	s.respondJSON(w, statusForResult(result), result)
}
