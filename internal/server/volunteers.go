package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"givelocal/internal/utils"
	"givelocal/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.volunteerRepo.AllEvents(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load events")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, events)
}

type eventForm struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Location    string `form:"location" json:"location"`
	StartsAt    string `form:"starts_at" json:"starts_at"` // RFC 3339
	Capacity    int    `form:"capacity" json:"capacity"`
}

func (s *Service) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	org, ok := s.ownOrganization(w, r)
	if !ok {
		return
	}

	if org.Status != types.OrganizationStatusApproved {
		s.respondError(w, http.StatusForbidden, "organization is not approved")
		return
	}

	var form eventForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	startsAt, err := time.Parse(time.RFC3339, form.StartsAt)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "starts_at must be RFC 3339")
		return
	}

	if form.Capacity <= 0 {
		s.respondError(w, http.StatusBadRequest, "capacity must be positive")
		return
	}

	event := &types.VolunteerEvent{
		OrganizationID: org.ID,
		Title:          form.Title,
		StartsAt:       startsAt,
		Capacity:       form.Capacity,
	}
	if desc := strings.TrimSpace(form.Description); desc != "" {
		event.Description = utils.StringPtr(desc)
	}
	if loc := strings.TrimSpace(form.Location); loc != "" {
		event.Location = utils.StringPtr(loc)
	}

	if err := s.volunteerRepo.CreateEvent(r.Context(), event); err != nil {
		s.logger.WithError(err).Error("failed to create event")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusCreated, event)
}

type eventStatusForm struct {
	Status string `form:"status" json:"status"`
}

func (s *Service) handleSetEventStatus(w http.ResponseWriter, r *http.Request) {
	org, ok := s.ownOrganization(w, r)
	if !ok {
		return
	}

	event, err := s.volunteerRepo.Event(r.Context(), flow.Param(r.Context(), "eventID"))
	if err != nil {
		if errors.Is(err, types.ErrEventNotFound) {
			s.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		s.logger.WithError(err).Error("failed to load event")
		s.internalServerError(w)
		return
	}

	if event.OrganizationID != org.ID {
		s.respondError(w, http.StatusForbidden, "not your event")
		return
	}

	var form eventStatusForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	status := types.EventStatus(form.Status)
	switch status {
	case types.EventStatusUpcoming, types.EventStatusCompleted, types.EventStatusCancelled:
	default:
		s.respondError(w, http.StatusBadRequest, "status must be upcoming, completed or cancelled")
		return
	}

	if err := s.volunteerRepo.SetEventStatus(r.Context(), event.ID, status); err != nil {
		s.logger.WithError(err).Error("failed to set event status")
		s.internalServerError(w)
		return
	}

	if status == types.EventStatusCancelled {
		s.notifyEventRegistrants(r, event, "Event cancelled",
			"\""+event.Title+"\" has been cancelled")
	}

	s.respondJSON(w, http.StatusOK, types.Succeeded())
}

func (s *Service) handleRegisterForEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	event, err := s.volunteerRepo.Event(r.Context(), flow.Param(r.Context(), "eventID"))
	if err != nil {
		if errors.Is(err, types.ErrEventNotFound) {
			s.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		s.logger.WithError(err).Error("failed to load event")
		s.internalServerError(w)
		return
	}

	if event.Status != types.EventStatusUpcoming {
		s.respondError(w, http.StatusConflict, "event is not open for registration")
		return
	}

	active, err := s.volunteerRepo.CountActiveRegistrations(r.Context(), event.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to count registrations")
		s.internalServerError(w)
		return
	}

	if active >= event.Capacity {
		s.respondError(w, http.StatusConflict, types.ErrEventFull.Error())
		return
	}

	registration := &types.VolunteerRegistration{
		EventID: event.ID,
		UserID:  userID,
	}

	if err := s.volunteerRepo.CreateRegistration(r.Context(), registration); err != nil {
		s.logger.WithError(err).Error("failed to create registration")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusCreated, registration)
}

func (s *Service) handleCancelRegistration(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	eventID := flow.Param(r.Context(), "eventID")

	registrations, err := s.volunteerRepo.RegistrationsByUser(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load registrations")
		s.internalServerError(w)
		return
	}

	for _, registration := range registrations {
		if registration.EventID == eventID && registration.Status == types.RegistrationStatusRegistered {
			if err := s.volunteerRepo.SetRegistrationStatus(r.Context(), registration.ID, types.RegistrationStatusCancelled); err != nil {
				s.logger.WithError(err).Error("failed to cancel registration")
				s.internalServerError(w)
				return
			}
			s.respondJSON(w, http.StatusOK, types.Succeeded())
			return
		}
	}

	s.respondError(w, http.StatusNotFound, "no active registration for this event")
}

func (s *Service) handleMyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	registrations, err := s.volunteerRepo.RegistrationsByUser(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load registrations")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, registrations)
}

func (s *Service) notifyEventRegistrants(r *http.Request, event *types.VolunteerEvent, title, message string) {
	registrations, err := s.volunteerRepo.RegistrationsByEvent(r.Context(), event.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load registrations for notification")
		return
	}

	for _, registration := range registrations {
		if registration.Status != types.RegistrationStatusRegistered {
			continue
		}
		s.notifyUser(r.Context(), registration.UserID, types.NotificationTypeVolunteer, title, message)
	}
}
