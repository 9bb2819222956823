package server

import (
	"fmt"
	"net/http"

	"givelocal/internal/utils"
	"givelocal/pkg/types"

	"github.com/alexedwards/flow"
)

// handleUploadDocument stores an uploaded file in S3 and returns its object
// key. purpose=verification also records the key on the caller's profile
// (and organization, for organization accounts); purpose=listing_image just
// returns the key for the client to attach to a listing.
func (s *Service) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxDocumentBytes)
	if err := r.ParseMultipartForm(s.config.MaxDocumentBytes); err != nil {
		s.respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.config.MaxDocumentBytes))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	purpose := r.FormValue("purpose")
	switch purpose {
	case "verification", "listing_image":
	default:
		s.respondError(w, http.StatusBadRequest, "purpose must be verification or listing_image")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s/%s", purpose, userID, utils.NanoID())

	if _, err := s.documents.Upload(r.Context(), key, file, contentType); err != nil {
		s.logger.WithError(err).Error("failed to upload document")
		s.internalServerError(w)
		return
	}

	if purpose == "verification" {
		if err := s.profileRepo.SetVerificationDocument(r.Context(), userID, key); err != nil {
			s.logger.WithError(err).Error("failed to record verification document")
			s.internalServerError(w)
			return
		}

		// Organization accounts carry the document on the org record too,
		// where admins review it.
		if org, err := s.orgRepo.OrganizationByOwner(r.Context(), userID); err == nil {
			org.VerificationDocument = &key
			if err := s.orgRepo.Update(r.Context(), org.ID, org); err != nil {
				s.logger.WithError(err).Error("failed to record organization document")
			}
		}
	}

	s.respondJSON(w, http.StatusCreated, map[string]string{"key": key})
}

// handleGetDocumentURL returns a short-lived presigned URL. Callers may only
// read objects under their own prefix; admins may read anything.
func (s *Service) handleGetDocumentURL(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	key := flow.Param(r.Context(), "...")
	if key == "" {
		s.respondError(w, http.StatusBadRequest, "key is required")
		return
	}

	if !s.canReadDocument(r, userID, key) {
		s.respondError(w, http.StatusForbidden, "not your document")
		return
	}

	url, err := s.documents.PresignGet(r.Context(), key)
	if err != nil {
		s.logger.WithError(err).Error("failed to presign document")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Service) canReadDocument(r *http.Request, userID, key string) bool {
	// Listing images are public renditions; anyone signed in may view them.
	if len(key) > len("listing_image/") && key[:len("listing_image/")] == "listing_image/" {
		return true
	}

	ownPrefix := fmt.Sprintf("verification/%s/", userID)
	if len(key) > len(ownPrefix) && key[:len(ownPrefix)] == ownPrefix {
		return true
	}

	role, err := s.roleRepo.RoleByUser(r.Context(), userID)
	if err != nil {
		return false
	}
	return role.Role == types.RoleAdmin
}
