package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"givelocal/internal/utils"
	"givelocal/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
)

func (s *Service) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.crowdfundingRepo.AllCampaigns(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load campaigns")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, campaigns)
}

type campaignForm struct {
	Title           string `form:"title" json:"title"`
	Description     string `form:"description" json:"description"`
	GoalAmountCents int64  `form:"goal_amount_cents" json:"goal_amount_cents"`
	EndsAt          string `form:"ends_at" json:"ends_at"` // RFC 3339, optional
}

func (s *Service) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	org, ok := s.ownOrganization(w, r)
	if !ok {
		return
	}

	if org.Status != types.OrganizationStatusApproved {
		s.respondError(w, http.StatusForbidden, "organization is not approved")
		return
	}

	var form campaignForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	if form.GoalAmountCents <= 0 {
		s.respondError(w, http.StatusBadRequest, "goal_amount_cents must be positive")
		return
	}

	campaign := &types.CrowdfundingCampaign{
		OrganizationID:  org.ID,
		Title:           form.Title,
		GoalAmountCents: form.GoalAmountCents,
	}
	if desc := strings.TrimSpace(form.Description); desc != "" {
		campaign.Description = utils.StringPtr(desc)
	}
	if form.EndsAt != "" {
		endsAt, err := time.Parse(time.RFC3339, form.EndsAt)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "ends_at must be RFC 3339")
			return
		}
		campaign.EndsAt = utils.TimePtr(endsAt)
	}

	if err := s.crowdfundingRepo.CreateCampaign(r.Context(), campaign); err != nil {
		s.logger.WithError(err).Error("failed to create campaign")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusCreated, campaign)
}

type campaignStatusForm struct {
	Status string `form:"status" json:"status"`
}

func (s *Service) handleSetCampaignStatus(w http.ResponseWriter, r *http.Request) {
	org, ok := s.ownOrganization(w, r)
	if !ok {
		return
	}

	campaign, err := s.crowdfundingRepo.Campaign(r.Context(), flow.Param(r.Context(), "campaignID"))
	if err != nil {
		if errors.Is(err, types.ErrCampaignNotFound) {
			s.respondError(w, http.StatusNotFound, "campaign not found")
			return
		}
		s.logger.WithError(err).Error("failed to load campaign")
		s.internalServerError(w)
		return
	}

	if campaign.OrganizationID != org.ID {
		s.respondError(w, http.StatusForbidden, "not your campaign")
		return
	}

	var form campaignStatusForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	status := types.CampaignStatus(form.Status)
	switch status {
	case types.CampaignStatusActive, types.CampaignStatusCompleted, types.CampaignStatusCancelled:
	default:
		s.respondError(w, http.StatusBadRequest, "status must be active, completed or cancelled")
		return
	}

	if err := s.crowdfundingRepo.SetCampaignStatus(r.Context(), campaign.ID, status); err != nil {
		s.logger.WithError(err).Error("failed to set campaign status")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, types.Succeeded())
}

type donationForm struct {
	AmountCents int64 `form:"amount_cents" json:"amount_cents"`
}

// handleDonateToCampaign creates a Stripe payment intent and records the
// donation. The recorded row carries the intent ID so a reconciliation job
// can void rows whose payment never completed.
func (s *Service) handleDonateToCampaign(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	campaign, err := s.crowdfundingRepo.Campaign(r.Context(), flow.Param(r.Context(), "campaignID"))
	if err != nil {
		if errors.Is(err, types.ErrCampaignNotFound) {
			s.respondError(w, http.StatusNotFound, "campaign not found")
			return
		}
		s.logger.WithError(err).Error("failed to load campaign")
		s.internalServerError(w)
		return
	}

	if campaign.Status != types.CampaignStatusActive {
		s.respondError(w, http.StatusConflict, "campaign is not active")
		return
	}

	var form donationForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if form.AmountCents <= 0 {
		s.respondError(w, http.StatusBadRequest, "amount_cents must be positive")
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(form.AmountCents),
		Currency: stripe.String(string(stripe.CurrencySGD)),
	}
	params.AddMetadata("campaign_id", campaign.ID)
	params.AddMetadata("donor_id", userID)

	intent, err := paymentintent.New(params)
	if err != nil {
		s.logger.WithError(err).Error("failed to create payment intent")
		s.respondError(w, http.StatusBadGateway, "payment provider unavailable")
		return
	}

	donation := &types.CrowdfundingDonation{
		CampaignID:      campaign.ID,
		DonorID:         userID,
		AmountCents:     form.AmountCents,
		PaymentIntentID: utils.StringPtr(intent.ID),
	}

	if err := s.crowdfundingRepo.RecordDonation(r.Context(), donation); err != nil {
		s.logger.WithError(err).Error("failed to record donation")
		s.internalServerError(w)
		return
	}

	s.notifyOrganizationOwnerOfDonation(r, campaign)

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"donation":      donation,
		"client_secret": intent.ClientSecret,
	})
}

func (s *Service) notifyOrganizationOwnerOfDonation(r *http.Request, campaign *types.CrowdfundingCampaign) {
	org, err := s.orgRepo.Organization(r.Context(), campaign.OrganizationID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load organization for donation notification")
		return
	}

	s.notifyUser(r.Context(), org.OwnerID, types.NotificationTypeCrowdfunding,
		"New donation",
		"\""+campaign.Title+"\" received a new donation")
}
