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

// handleListRequests shows approved requests plus the caller's own,
// whatever their moderation state.
func (s *Service) handleListRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	requests, err := s.requestRepo.VisibleRequests(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load requests")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, requests)
}

type requestForm struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Category    string `form:"category" json:"category"`
	Location    string `form:"location" json:"location"`
	Urgency     string `form:"urgency" json:"urgency"`
}

func (s *Service) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var form requestForm
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

	urgency := types.Urgency(form.Urgency)
	switch urgency {
	case types.UrgencyLow, types.UrgencyMedium, types.UrgencyHigh:
	case "":
		urgency = types.UrgencyMedium
	default:
		s.respondError(w, http.StatusBadRequest, "urgency must be low, medium or high")
		return
	}

	request := &types.ItemRequest{
		UserID:   userID,
		Title:    form.Title,
		Category: form.Category,
		Urgency:  urgency,
	}
	if desc := strings.TrimSpace(form.Description); desc != "" {
		request.Description = utils.StringPtr(desc)
	}
	if loc := strings.TrimSpace(form.Location); loc != "" {
		request.Location = utils.StringPtr(loc)
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.moderation.SubmitItemRequest(ctx, request)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	request, ok := s.ownRequest(w, r)
	if !ok {
		return
	}

	var form requestForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if title := strings.TrimSpace(form.Title); title != "" {
		request.Title = title
	}
	if desc := strings.TrimSpace(form.Description); desc != "" {
		request.Description = utils.StringPtr(desc)
	}
	if loc := strings.TrimSpace(form.Location); loc != "" {
		request.Location = utils.StringPtr(loc)
	}
	if form.Urgency != "" {
		urgency := types.Urgency(form.Urgency)
		switch urgency {
		case types.UrgencyLow, types.UrgencyMedium, types.UrgencyHigh:
			request.Urgency = urgency
		default:
			s.respondError(w, http.StatusBadRequest, "urgency must be low, medium or high")
			return
		}
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.requestRepo.Update(ctx, request.ID, request)
	})

	s.respondJSON(w, statusForResult(result), result)
}

type requestStatusForm struct {
	Status string `form:"status" json:"status"`
}

func (s *Service) handleSetRequestStatus(w http.ResponseWriter, r *http.Request) {
	request, ok := s.ownRequest(w, r)
	if !ok {
		return
	}

	var form requestStatusForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	status := types.RequestStatus(form.Status)
	switch status {
	case types.RequestStatusActive, types.RequestStatusFulfilled, types.RequestStatusCancelled:
	default:
		s.respondError(w, http.StatusBadRequest, "status must be active, fulfilled or cancelled")
		return
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.requestRepo.SetStatus(ctx, request.ID, status)
	})

	s.respondJSON(w, statusForResult(result), result)
}

func (s *Service) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	request, ok := s.ownRequest(w, r)
	if !ok {
		return
	}

	result := s.aggregator.Do(r.Context(), func(ctx context.Context) error {
		return s.requestRepo.Delete(ctx, request.ID)
	})

	s.respondJSON(w, statusForResult(result), result)
}

// ownRequest loads the request in the URL and verifies the caller owns it.
func (s *Service) ownRequest(w http.ResponseWriter, r *http.Request) (*types.ItemRequest, bool) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}

	request, err := s.requestRepo.Request(r.Context(), flow.Param(r.Context(), "requestID"))
	if err != nil {
		if errors.Is(err, types.ErrRequestNotFound) {
			s.respondError(w, http.StatusNotFound, "request not found")
			return nil, false
		}
		s.logger.WithError(err).Error("failed to load request")
		s.internalServerError(w)
		return nil, false
	}

	if request.UserID != userID {
		s.respondError(w, http.StatusForbidden, "not your request")
		return nil, false
	}

	return request, true
}
