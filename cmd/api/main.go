package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"cassmarket/internal/adapter/api"
	"cassmarket/internal/adapter/api/handler"
	apimiddleware "cassmarket/internal/adapter/api/middleware"
	"cassmarket/internal/adapter/api/router"
	"cassmarket/internal/adapter/repository"
	"cassmarket/internal/infrastructure/cache"
	"cassmarket/internal/infrastructure/firebase"
	"cassmarket/internal/infrastructure/ratelimit"
	"cassmarket/internal/infrastructure/storage"
	"cassmarket/internal/infrastructure/websocket"
	"cassmarket/internal/usecase"
	"cassmarket/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Try to get service account from environment variable (for production)
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		// Fallback to file path (for local development)
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	favoriteRepo := repository.NewFirestoreFavoriteRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	articleRepo := repository.NewFirestoreArticleRepository(firestoreClient)

	firebaseAuthClient := firebase.NewAuthClient(authClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	messageLimiter := ratelimit.NewLimiter(cfg.MessageRateLimit, cfg.MessageRateWindow)
	messageLimiter.StartCleanupRoutine()

	favoriteUseCase := usecase.NewFavoriteUseCase(favoriteRepo, cache.New(cfg.FavoritesCacheTTL))
	userUseCase := usecase.NewUserUseCase(userRepo, cache.New(cfg.UsersCacheTTL))
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, articleRepo, cache.New(cfg.MessagesCacheTTL), messageLimiter)
	articleUseCase := usecase.NewArticleUseCase(articleRepo, storageClient)

	handler.SetupHealthHandler(firebaseAuthClient)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	// Per-IP shield for the whole surface, separate from the per-sender
	// message quota inside the chat usecase.
	apiLimiter := ratelimit.NewLimiter(120, time.Minute)
	apiLimiter.StartCleanupRoutine()
	e.Use(apimiddleware.RateLimit(apiLimiter))

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	handlers := router.Handlers{
		Favorite:  handler.NewFavoriteHandler(favoriteUseCase),
		Chat:      handler.NewChatHandler(chatUseCase, userUseCase),
		User:      handler.NewUserHandler(userUseCase),
		Article:   handler.NewArticleHandler(articleUseCase),
		WebSocket: handler.NewWebSocketHandler(wsManager, chatUseCase, userUseCase),
	}

	router.Setup(e, handlers, authMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
