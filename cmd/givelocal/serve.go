package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"givelocal/internal/aggregator"
	"givelocal/internal/db"
	"givelocal/internal/identity"
	"givelocal/internal/moderation"
	"givelocal/internal/notify"
	"givelocal/internal/realtime"
	"givelocal/internal/server"
	"givelocal/internal/storage"
	"givelocal/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v84"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)
	s3Client := s3.NewFromConfig(awsConfig)
	documents := storage.NewDocumentStorage(s3Client, config.DocumentBucketName)

	stripe.Key = config.StripeSecretKey

	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddr})

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	profileRepo := store.NewProfileRepository(pool)
	roleRepo := store.NewUserRoleRepository(pool)
	orgRepo := store.NewOrganizationRepository(pool)
	categoryRepo := store.NewCategoryRepository(pool)
	proposalRepo := store.NewCategoryProposalRepository(pool)
	requestRepo := store.NewItemRequestRepository(pool)
	listingRepo := store.NewDonationListingRepository(pool)
	pickupRepo := store.NewPickupRequestRepository(pool)
	notificationRepo := store.NewNotificationRepository(pool)
	volunteerRepo := store.NewVolunteerRepository(pool)
	crowdfundingRepo := store.NewCrowdfundingRepository(pool)

	hub := realtime.NewHub(logger)
	go hub.Run()

	dispatcher := notify.NewDispatcher(logger, notificationRepo, hub)
	resolver := identity.NewResolver(logger, profileRepo, roleRepo, orgRepo)

	agg := aggregator.New(
		logger,
		categoryRepo,
		orgRepo,
		profileRepo,
		roleRepo,
		proposalRepo,
		requestRepo,
		listingRepo,
	)
	agg.Refresh(ctx)

	moderationService := moderation.NewService(
		logger,
		categoryRepo,
		proposalRepo,
		requestRepo,
		orgRepo,
		profileRepo,
		dispatcher,
	)

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwk with cache: %w", err)
	}

	srv, err := server.New(config, logger, server.Deps{
		CognitoClient: cognitoClient,
		RedisClient:   redisClient,
		Documents:     documents,

		ProfileRepo:      profileRepo,
		RoleRepo:         roleRepo,
		OrgRepo:          orgRepo,
		CategoryRepo:     categoryRepo,
		ProposalRepo:     proposalRepo,
		RequestRepo:      requestRepo,
		ListingRepo:      listingRepo,
		PickupRepo:       pickupRepo,
		VolunteerRepo:    volunteerRepo,
		CrowdfundingRepo: crowdfundingRepo,

		Resolver:   resolver,
		Aggregator: agg,
		Moderation: moderationService,
		Dispatcher: dispatcher,
		Hub:        hub,

		JWKCache: jwkCache,
		JWKSURL:  jwksURL,
	})
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
