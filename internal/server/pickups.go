package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"givelocal/internal/notify"
	"givelocal/internal/utils"
	"givelocal/pkg/types"

	"github.com/alexedwards/flow"
)

// handleListPickups shows the pickup requests on one of the caller's
// listings.
func (s *Service) handleListPickups(w http.ResponseWriter, r *http.Request) {
	listing, ok := s.ownListing(w, r)
	if !ok {
		return
	}

	pickups, err := s.pickupRepo.RequestsByListing(r.Context(), listing.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load pickup requests")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, pickups)
}

func (s *Service) handleMyPickups(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	pickups, err := s.pickupRepo.RequestsByRequester(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load pickup requests")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, pickups)
}

type pickupForm struct {
	ProposedTime    string `form:"proposed_time" json:"proposed_time"` // RFC 3339
	AlternativeTime string `form:"alternative_time" json:"alternative_time"`
	Message         string `form:"message" json:"message"`
}

func (s *Service) handleCreatePickup(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

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

	if listing.DonorID == userID {
		s.respondError(w, http.StatusBadRequest, "cannot request pickup of your own listing")
		return
	}

	if listing.Status != types.ListingStatusAvailable {
		s.respondError(w, http.StatusConflict, "listing is no longer available")
		return
	}

	var form pickupForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	proposedTime, err := time.Parse(time.RFC3339, form.ProposedTime)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "proposed_time must be RFC 3339")
		return
	}

	pickup := &types.PickupRequest{
		ListingID:    listing.ID,
		RequesterID:  userID,
		ProposedTime: proposedTime,
	}
	if form.AlternativeTime != "" {
		alt, err := time.Parse(time.RFC3339, form.AlternativeTime)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "alternative_time must be RFC 3339")
			return
		}
		pickup.AlternativeTime = utils.TimePtr(alt)
	}
	if msg := strings.TrimSpace(form.Message); msg != "" {
		pickup.Message = utils.StringPtr(msg)
	}

	if err := s.pickupRepo.Create(r.Context(), pickup); err != nil {
		s.logger.WithError(err).Error("failed to create pickup request")
		s.internalServerError(w)
		return
	}

	s.notifyUser(r.Context(), listing.DonorID, types.NotificationTypePickup,
		"New pickup request",
		"Someone wants to pick up \""+listing.Title+"\"")

	s.respondJSON(w, http.StatusCreated, pickup)
}

type pickupResponseForm struct {
	ResponseMessage string `form:"response_message" json:"response_message"`
}

// handleAcceptPickup accepts one pending request, claims the listing and
// rejects the other pending requests for it. The claim runs first: when two
// donors' devices race, only the one whose conditional update lands wins.
func (s *Service) handleAcceptPickup(w http.ResponseWriter, r *http.Request) {
	pickup, listing, ok := s.pickupOnOwnListing(w, r)
	if !ok {
		return
	}

	if pickup.Status != types.PickupStatusPending {
		s.respondError(w, http.StatusConflict, "pickup request is not pending")
		return
	}

	var form pickupResponseForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if err := s.listingRepo.Claim(r.Context(), listing.ID); err != nil {
		if errors.Is(err, types.ErrListingUnavailable) {
			s.respondError(w, http.StatusConflict, "listing is no longer available")
			return
		}
		s.logger.WithError(err).Error("failed to claim listing")
		s.internalServerError(w)
		return
	}

	var responseMessage *string
	if msg := strings.TrimSpace(form.ResponseMessage); msg != "" {
		responseMessage = utils.StringPtr(msg)
	}

	if err := s.pickupRepo.SetStatus(r.Context(), pickup.ID, types.PickupStatusAccepted, responseMessage); err != nil {
		s.logger.WithError(err).Error("failed to accept pickup request")
		s.internalServerError(w)
		return
	}

	if err := s.pickupRepo.RejectOtherPending(r.Context(), listing.ID, pickup.ID, "The item has been promised to another requester"); err != nil {
		s.logger.WithError(err).Error("failed to reject other pickup requests")
	}

	s.notifyUser(r.Context(), pickup.RequesterID, types.NotificationTypePickup,
		"Pickup accepted",
		"Your pickup request for \""+listing.Title+"\" was accepted")

	s.respondJSON(w, http.StatusOK, types.Succeeded())
}

func (s *Service) handleRejectPickup(w http.ResponseWriter, r *http.Request) {
	pickup, listing, ok := s.pickupOnOwnListing(w, r)
	if !ok {
		return
	}

	if pickup.Status != types.PickupStatusPending {
		s.respondError(w, http.StatusConflict, "pickup request is not pending")
		return
	}

	var form pickupResponseForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	var responseMessage *string
	if msg := strings.TrimSpace(form.ResponseMessage); msg != "" {
		responseMessage = utils.StringPtr(msg)
	}

	if err := s.pickupRepo.SetStatus(r.Context(), pickup.ID, types.PickupStatusRejected, responseMessage); err != nil {
		s.logger.WithError(err).Error("failed to reject pickup request")
		s.internalServerError(w)
		return
	}

	s.notifyUser(r.Context(), pickup.RequesterID, types.NotificationTypePickup,
		"Pickup declined",
		"Your pickup request for \""+listing.Title+"\" was declined")

	s.respondJSON(w, http.StatusOK, types.Succeeded())
}

func (s *Service) handleCompletePickup(w http.ResponseWriter, r *http.Request) {
	pickup, listing, ok := s.pickupOnOwnListing(w, r)
	if !ok {
		return
	}

	if pickup.Status != types.PickupStatusAccepted {
		s.respondError(w, http.StatusConflict, "pickup request is not accepted")
		return
	}

	if err := s.pickupRepo.SetStatus(r.Context(), pickup.ID, types.PickupStatusCompleted, nil); err != nil {
		s.logger.WithError(err).Error("failed to complete pickup request")
		s.internalServerError(w)
		return
	}

	s.notifyUser(r.Context(), pickup.RequesterID, types.NotificationTypeDonation,
		"Pickup completed",
		"The handover of \""+listing.Title+"\" has been marked complete")

	s.respondJSON(w, http.StatusOK, types.Succeeded())
}

func (s *Service) handleListPickupMessages(w http.ResponseWriter, r *http.Request) {
	pickup, _, ok := s.pickupParticipant(w, r)
	if !ok {
		return
	}

	messages, err := s.pickupRepo.MessagesByRequest(r.Context(), pickup.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load pickup messages")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, messages)
}

type pickupMessageForm struct {
	Body string `form:"body" json:"body"`
}

func (s *Service) handleCreatePickupMessage(w http.ResponseWriter, r *http.Request) {
	pickup, listing, ok := s.pickupParticipant(w, r)
	if !ok {
		return
	}

	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var form pickupMessageForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	body := strings.TrimSpace(form.Body)
	if body == "" {
		s.respondError(w, http.StatusBadRequest, "body is required")
		return
	}

	message := &types.PickupMessage{
		RequestID: pickup.ID,
		SenderID:  userID,
		Body:      body,
	}

	if err := s.pickupRepo.CreateMessage(r.Context(), message); err != nil {
		s.logger.WithError(err).Error("failed to create pickup message")
		s.internalServerError(w)
		return
	}

	// Nudge both the chat thread and the other party's notification feed.
	s.hub.Publish(notify.PickupTopic(pickup.ID), "message")

	recipient := pickup.RequesterID
	if userID == pickup.RequesterID {
		recipient = listing.DonorID
	}
	s.notifyUser(r.Context(), recipient, types.NotificationTypeChat,
		"New message",
		"You have a new message about \""+listing.Title+"\"")

	s.respondJSON(w, http.StatusCreated, message)
}

// pickupOnOwnListing loads the pickup in the URL and verifies the caller
// owns the listing it targets.
func (s *Service) pickupOnOwnListing(w http.ResponseWriter, r *http.Request) (*types.PickupRequest, *types.DonationListing, bool) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return nil, nil, false
	}

	pickup, listing, ok := s.loadPickupWithListing(w, r)
	if !ok {
		return nil, nil, false
	}

	if listing.DonorID != userID {
		s.respondError(w, http.StatusForbidden, "not your listing")
		return nil, nil, false
	}

	return pickup, listing, true
}

// pickupParticipant allows either side of the pickup: the requester or the
// listing's donor.
func (s *Service) pickupParticipant(w http.ResponseWriter, r *http.Request) (*types.PickupRequest, *types.DonationListing, bool) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return nil, nil, false
	}

	pickup, listing, ok := s.loadPickupWithListing(w, r)
	if !ok {
		return nil, nil, false
	}

	if pickup.RequesterID != userID && listing.DonorID != userID {
		s.respondError(w, http.StatusForbidden, "not a participant in this pickup")
		return nil, nil, false
	}

	return pickup, listing, true
}

func (s *Service) loadPickupWithListing(w http.ResponseWriter, r *http.Request) (*types.PickupRequest, *types.DonationListing, bool) {
	pickup, err := s.pickupRepo.Request(r.Context(), flow.Param(r.Context(), "pickupID"))
	if err != nil {
		if errors.Is(err, types.ErrPickupNotFound) {
			s.respondError(w, http.StatusNotFound, "pickup request not found")
			return nil, nil, false
		}
		s.logger.WithError(err).Error("failed to load pickup request")
		s.internalServerError(w)
		return nil, nil, false
	}

	listing, err := s.listingRepo.Listing(r.Context(), pickup.ListingID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load listing for pickup")
		s.internalServerError(w)
		return nil, nil, false
	}

	return pickup, listing, true
}

// notifyUser dispatches a notification without failing the surrounding
// request; delivery problems only get logged.
func (s *Service) notifyUser(ctx context.Context, userID string, kind types.NotificationType, title, message string) {
	if err := s.dispatcher.Notify(ctx, userID, kind, title, message, nil); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("failed to dispatch notification")
	}
}
