package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"givelocal/internal/aggregator"
	"givelocal/internal/identity"
	"givelocal/internal/moderation"
	"givelocal/internal/notify"
	"givelocal/internal/realtime"
	"givelocal/internal/storage"
	"givelocal/internal/store"
	"givelocal/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger *logrus.Logger
	config *types.Config

	cognitoClient *cognitoidentityprovider.Client
	redisClient   *redis.Client
	documents     *storage.DocumentStorage

	profileRepo      *store.ProfileRepository
	roleRepo         *store.UserRoleRepository
	orgRepo          *store.OrganizationRepository
	categoryRepo     *store.CategoryRepository
	proposalRepo     *store.CategoryProposalRepository
	requestRepo      *store.ItemRequestRepository
	listingRepo      *store.DonationListingRepository
	pickupRepo       *store.PickupRequestRepository
	volunteerRepo    *store.VolunteerRepository
	crowdfundingRepo *store.CrowdfundingRepository

	resolver   *identity.Resolver
	aggregator *aggregator.Aggregator
	moderation *moderation.Service
	dispatcher *notify.Dispatcher
	hub        *realtime.Hub

	cookie    *securecookie.SecureCookie
	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

type Deps struct {
	CognitoClient *cognitoidentityprovider.Client
	RedisClient   *redis.Client
	Documents     *storage.DocumentStorage

	ProfileRepo      *store.ProfileRepository
	RoleRepo         *store.UserRoleRepository
	OrgRepo          *store.OrganizationRepository
	CategoryRepo     *store.CategoryRepository
	ProposalRepo     *store.CategoryProposalRepository
	RequestRepo      *store.ItemRequestRepository
	ListingRepo      *store.DonationListingRepository
	PickupRepo       *store.PickupRequestRepository
	VolunteerRepo    *store.VolunteerRepository
	CrowdfundingRepo *store.CrowdfundingRepository

	Resolver   *identity.Resolver
	Aggregator *aggregator.Aggregator
	Moderation *moderation.Service
	Dispatcher *notify.Dispatcher
	Hub        *realtime.Hub

	JWKCache *jwk.Cache
	JWKSURL  string
}

func New(config *types.Config, logger *logrus.Logger, deps Deps) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		cognitoClient: deps.CognitoClient,
		redisClient:   deps.RedisClient,
		documents:     deps.Documents,

		profileRepo:      deps.ProfileRepo,
		roleRepo:         deps.RoleRepo,
		orgRepo:          deps.OrgRepo,
		categoryRepo:     deps.CategoryRepo,
		proposalRepo:     deps.ProposalRepo,
		requestRepo:      deps.RequestRepo,
		listingRepo:      deps.ListingRepo,
		pickupRepo:       deps.PickupRepo,
		volunteerRepo:    deps.VolunteerRepo,
		crowdfundingRepo: deps.CrowdfundingRepo,

		resolver:   deps.Resolver,
		aggregator: deps.Aggregator,
		moderation: deps.Moderation,
		dispatcher: deps.Dispatcher,
		hub:        deps.Hub,

		jwksCache: deps.JWKCache,
		jwksURL:   deps.JWKSURL,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(s.RateLimit)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/auth/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/auth/confirm", s.handlePostConfirm, http.MethodPost)
	r.HandleFunc("/auth/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handlePostLogout, http.MethodPost)

	// Public browse surface
	r.HandleFunc("/categories", s.handleListCategories, http.MethodGet)
	r.HandleFunc("/organizations", s.handleListOrganizations, http.MethodGet)
	r.HandleFunc("/organizations/:orgID", s.handleGetOrganization, http.MethodGet)
	r.HandleFunc("/organizations/:orgID/match", s.handleMatchOrganization, http.MethodGet)
	r.HandleFunc("/listings", s.handleListListings, http.MethodGet)
	r.HandleFunc("/listings/:listingID", s.handleGetListing, http.MethodGet)
	r.HandleFunc("/events", s.handleListEvents, http.MethodGet)
	r.HandleFunc("/campaigns", s.handleListCampaigns, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/auth/session", s.handleGetSession, http.MethodGet)
		r.HandleFunc("/profile", s.handleUpdateProfile, http.MethodPut)
		r.HandleFunc("/documents", s.handleUploadDocument, http.MethodPost)
		r.HandleFunc("/documents/...", s.handleGetDocumentURL, http.MethodGet)

		r.HandleFunc("/requests", s.handleListRequests, http.MethodGet)
		r.HandleFunc("/requests", s.handleCreateRequest, http.MethodPost)
		r.HandleFunc("/requests/:requestID", s.handleUpdateRequest, http.MethodPut)
		r.HandleFunc("/requests/:requestID/status", s.handleSetRequestStatus, http.MethodPut)
		r.HandleFunc("/requests/:requestID", s.handleDeleteRequest, http.MethodDelete)

		r.HandleFunc("/listings", s.handleCreateListing, http.MethodPost)
		r.HandleFunc("/listings/:listingID", s.handleUpdateListing, http.MethodPut)
		r.HandleFunc("/listings/:listingID/status", s.handleSetListingStatus, http.MethodPut)
		r.HandleFunc("/listings/:listingID", s.handleDeleteListing, http.MethodDelete)

		r.HandleFunc("/listings/:listingID/pickups", s.handleListPickups, http.MethodGet)
		r.HandleFunc("/listings/:listingID/pickups", s.handleCreatePickup, http.MethodPost)
		r.HandleFunc("/pickups", s.handleMyPickups, http.MethodGet)
		r.HandleFunc("/pickups/:pickupID/accept", s.handleAcceptPickup, http.MethodPost)
		r.HandleFunc("/pickups/:pickupID/reject", s.handleRejectPickup, http.MethodPost)
		r.HandleFunc("/pickups/:pickupID/complete", s.handleCompletePickup, http.MethodPost)
		r.HandleFunc("/pickups/:pickupID/messages", s.handleListPickupMessages, http.MethodGet)
		r.HandleFunc("/pickups/:pickupID/messages", s.handleCreatePickupMessage, http.MethodPost)

		r.HandleFunc("/organization/profile", s.handleUpdateOrganizationProfile, http.MethodPut)
		r.HandleFunc("/organization/categories/:name/accept", s.handleAcceptCategory, http.MethodPost)
		r.HandleFunc("/organization/categories/:name/reject", s.handleRejectCategory, http.MethodPost)
		r.HandleFunc("/organization/categories/:name/clear", s.handleClearCategory, http.MethodPost)
		r.HandleFunc("/organization/categories/:name/subcategories", s.handleToggleSubcategory, http.MethodPost)
		r.HandleFunc("/organization/categories/:name/subcategories/bulk", s.handleBulkSubcategories, http.MethodPost)
		r.HandleFunc("/organization/proposals", s.handleListOwnProposals, http.MethodGet)
		r.HandleFunc("/organization/proposals", s.handleCreateProposal, http.MethodPost)

		r.HandleFunc("/events", s.handleCreateEvent, http.MethodPost)
		r.HandleFunc("/events/:eventID/status", s.handleSetEventStatus, http.MethodPut)
		r.HandleFunc("/events/:eventID/register", s.handleRegisterForEvent, http.MethodPost)
		r.HandleFunc("/events/:eventID/cancel", s.handleCancelRegistration, http.MethodPost)
		r.HandleFunc("/registrations", s.handleMyRegistrations, http.MethodGet)

		r.HandleFunc("/campaigns", s.handleCreateCampaign, http.MethodPost)
		r.HandleFunc("/campaigns/:campaignID/status", s.handleSetCampaignStatus, http.MethodPut)
		r.HandleFunc("/campaigns/:campaignID/donate", s.handleDonateToCampaign, http.MethodPost)

		r.HandleFunc("/notifications", s.handleListNotifications, http.MethodGet)
		r.HandleFunc("/notifications/read-all", s.handleMarkAllNotificationsRead, http.MethodPost)
		r.HandleFunc("/notifications/:notificationID/read", s.handleMarkNotificationRead, http.MethodPost)
		r.HandleFunc("/notifications/:notificationID", s.handleClearNotification, http.MethodDelete)
		r.HandleFunc("/notifications", s.handleClearAllNotifications, http.MethodDelete)

		r.HandleFunc("/ws", s.handleWebSocket, http.MethodGet)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)
		r.Use(s.RequireAdmin)

		r.HandleFunc("/admin/snapshot", s.handleAdminSnapshot, http.MethodGet)
		r.HandleFunc("/admin/refresh", s.handleAdminRefresh, http.MethodPost)

		r.HandleFunc("/admin/users/:userID/ban", s.handleBanUser, http.MethodPost)
		r.HandleFunc("/admin/users/:userID/unban", s.handleUnbanUser, http.MethodPost)
		r.HandleFunc("/admin/users/:userID", s.handleDeleteUser, http.MethodDelete)
		r.HandleFunc("/admin/beneficiaries/:userID/approve", s.handleApproveBeneficiary, http.MethodPost)
		r.HandleFunc("/admin/beneficiaries/:userID/reject", s.handleRejectBeneficiary, http.MethodPost)
		r.HandleFunc("/admin/organizations/:orgID/approve", s.handleApproveOrganization, http.MethodPost)
		r.HandleFunc("/admin/organizations/:orgID/reject", s.handleRejectOrganization, http.MethodPost)

		r.HandleFunc("/admin/categories", s.handleCreateCategory, http.MethodPost)
		r.HandleFunc("/admin/categories/:categoryID", s.handleUpdateCategory, http.MethodPut)
		r.HandleFunc("/admin/categories/:categoryID", s.handleDeleteCategory, http.MethodDelete)
		r.HandleFunc("/admin/proposals/:proposalID/approve", s.handleApproveProposal, http.MethodPost)
		r.HandleFunc("/admin/proposals/:proposalID/reject", s.handleRejectProposal, http.MethodPost)
		r.HandleFunc("/admin/requests/:requestID/approve", s.handleApproveRequest, http.MethodPost)
		r.HandleFunc("/admin/requests/:requestID/reject", s.handleRejectRequest, http.MethodPost)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}
