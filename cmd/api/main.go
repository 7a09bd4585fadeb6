package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"toolmart/internal/adapter/api"
	"toolmart/internal/adapter/api/handler"
	apimiddleware "toolmart/internal/adapter/api/middleware"
	"toolmart/internal/adapter/api/router"
	"toolmart/internal/adapter/repository"
	"toolmart/internal/domain/service"
	"toolmart/internal/infrastructure/firebase"
	"toolmart/internal/infrastructure/storage"
	"toolmart/internal/infrastructure/websocket"
	"toolmart/internal/usecase"
	"toolmart/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption
	serviceAccountPath := ""

	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(
		ctx,
		cfg.StorageBucket,
		cfg.FirebaseProject,
		serviceAccountPath,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	listingRepo := repository.NewFirestoreListingRepository(firestoreClient)
	offerRepo := repository.NewFirestoreOfferRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	fileMetadataRepo := repository.NewFirestoreFileMetadataRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	handler.SetupFileHandler(storageClient, fileMetadataRepo)
	handler.SetupDevTokenHandler(firebaseAuthClient, userRepo)
	handler.SetupHealthHandler(firebaseAuthClient)

	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient)
	listingUseCase := usecase.NewListingUseCase(listingRepo, userRepo)
	negotiationUseCase := usecase.NewNegotiationUseCase(offerRepo, messageRepo, listingRepo, userRepo, wsManager)
	messagingUseCase := usecase.NewMessagingUseCase(messageRepo, userRepo, listingRepo, wsManager)

	isLive := cfg.StripeEnvironment == "live"
	paymentService := service.NewStripePaymentService(cfg.StripeSecretKey, isLive)

	checkoutUseCase := usecase.NewCheckoutUseCase(
		paymentService,
		userRepo,
		listingRepo,
		offerRepo,
		messageRepo,
		wsManager,
		cfg.BaseURL,
	)

	handler.Setup(userUseCase, listingUseCase, negotiationUseCase, messagingUseCase)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.GeneralRateLimit())
	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware)
	checkoutHandler := handler.NewCheckoutHandler(checkoutUseCase, cfg.StripeWebhookKey)

	router.Setup(e, authMiddleware, adminMiddleware)
	router.SetupCheckoutRouter(e, checkoutHandler, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)
	router.SetupDevRouter(e, cfg.Environment)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
