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

	"farmlink/internal/adapter/api"
	"farmlink/internal/adapter/api/handler"
	apimiddleware "farmlink/internal/adapter/api/middleware"
	"farmlink/internal/adapter/api/router"
	"farmlink/internal/adapter/repository"
	"farmlink/internal/infrastructure/firebase"
	"farmlink/internal/infrastructure/websocket"
	"farmlink/internal/realtime"
	"farmlink/internal/usecase"
	"farmlink/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
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

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)
	productRepo := repository.NewFirestoreProductRepository(firestoreClient)
	orderRepo := repository.NewFirestoreOrderRepository(firestoreClient)
	reviewRepo := repository.NewFirestoreReviewRepository(firestoreClient)
	marketPriceRepo := repository.NewFirestoreMarketPriceRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)

	wsManager := websocket.NewManager(cfg.WriteTimeout)

	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient)
	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient)
	chatUseCase := usecase.NewChatUseCase(messageRepo, userRepo, productRepo, notificationRepo)
	offerUseCase := usecase.NewOfferUseCase(messageRepo, productRepo, notificationRepo)
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, userRepo)
	productUseCase := usecase.NewProductUseCase(productRepo, userRepo, notificationUseCase)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, productRepo, notificationRepo)
	reviewUseCase := usecase.NewReviewUseCase(reviewRepo, orderRepo)
	marketPriceUseCase := usecase.NewMarketPriceUseCase(marketPriceRepo, userRepo)

	hub := realtime.NewHub(chatUseCase, messageRepo, notificationRepo, wsManager)
	wsManager.OnConnected = hub.Connect
	wsManager.OnDisconnected = hub.Disconnect
	wsManager.OnInbound = hub.HandleInbound
	wsManager.Start(ctx)
	hub.StartPriceFeed(ctx, marketPriceRepo)

	handler.Setup(
		authUseCase,
		userUseCase,
		chatUseCase,
		offerUseCase,
		notificationUseCase,
		productUseCase,
		orderUseCase,
		reviewUseCase,
		marketPriceUseCase,
		hub,
	)
	handler.SetupHealthHandler()

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware)

	router.Setup(e, authMiddleware, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
