package server

import (
	"net/http"

	"givelocal/internal/notify"
	"givelocal/internal/realtime"

	"github.com/alexedwards/flow"
	"github.com/gorilla/websocket"
)

func (s *Service) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notifications, err := s.dispatcher.List(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load notifications")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, notifications)
}

func (s *Service) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notificationID := flow.Param(r.Context(), "notificationID")
	if err := s.dispatcher.MarkRead(r.Context(), notificationID, userID); err != nil {
		s.logger.WithError(err).Error("failed to mark notification read")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := s.dispatcher.MarkAllRead(r.Context(), userID); err != nil {
		s.logger.WithError(err).Error("failed to mark notifications read")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleClearNotification(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notificationID := flow.Param(r.Context(), "notificationID")
	if err := s.dispatcher.Clear(r.Context(), notificationID, userID); err != nil {
		s.logger.WithError(err).Error("failed to clear notification")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleClearAllNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := s.dispatcher.ClearAll(r.Context(), userID); err != nil {
		s.logger.WithError(err).Error("failed to clear notifications")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWebSocket upgrades the connection and subscribes it to a topic.
// Without ?topic= the client listens on its own notification feed; pickup
// chat threads are only joinable by their participants.
func (s *Service) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	topic := r.URL.Query().Get("topic")
	switch {
	case topic == "":
		topic = notify.UserTopic(userID)

	case topic == notify.UserTopic(userID):

	default:
		pickupID, ok := pickupIDFromTopic(topic)
		if !ok {
			s.respondError(w, http.StatusBadRequest, "unknown topic")
			return
		}

		pickup, err := s.pickupRepo.Request(r.Context(), pickupID)
		if err != nil {
			s.respondError(w, http.StatusNotFound, "pickup request not found")
			return
		}

		listing, err := s.listingRepo.Listing(r.Context(), pickup.ListingID)
		if err != nil {
			s.logger.WithError(err).Error("failed to load listing for websocket")
			s.internalServerError(w)
			return
		}

		if pickup.RequesterID != userID && listing.DonorID != userID {
			s.respondError(w, http.StatusForbidden, "not a participant in this pickup")
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("failed to upgrade websocket")
		return
	}

	client := realtime.NewClient(s.hub, conn, topic)
	go client.Serve()
}

func pickupIDFromTopic(topic string) (string, bool) {
	const prefix = "pickup:"
	if len(topic) > len(prefix) && topic[:len(prefix)] == prefix {
		return topic[len(prefix):], true
	}
	return "", false
}
