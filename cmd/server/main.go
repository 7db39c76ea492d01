package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"eventmarket_app/internal/handlers"
	authMiddleware "eventmarket_app/internal/middleware"
	"eventmarket_app/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Firebase
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}

	authClient, err := services.InitFirebase(credPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Auth features will not work until valid credentials are provided")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migration
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis
	var cache *services.RedisCache
	redisURL := os.Getenv("REDIS_URL")
	if redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer cache.Close()
	} else {
		log.Println("Warning: REDIS_URL not set, cross-process locking and caching disabled")
	}

	// Webhook signing secret is mandatory; without it every event would be
	// rejected and the processor would retry forever
	webhookSecret := os.Getenv("PROCESSOR_WEBHOOK_SECRET")
	if webhookSecret == "" {
		log.Fatal("PROCESSOR_WEBHOOK_SECRET not set")
	}

	// Build the reconciliation core
	processorClient := services.NewProcessorClient()
	authenticator := services.NewWebhookAuthenticator(webhookSecret)
	notifier := services.NewNotifierService(db)
	reconciler := services.NewReconcileService(db, cache, notifier)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = authMiddleware.CustomErrorHandler

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(authenticator, reconciler)
	notificationHandler := handlers.NewNotificationHandler(db, cache)
	paymentMethodHandler := handlers.NewPaymentMethodHandler(processorClient)

	// Processor webhook: authenticated by signature, not by session
	e.POST("/webhooks/payments", webhookHandler.HandleProcessorEvent)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Protected API routes
	api := e.Group("/api")
	api.Use(authMiddleware.RequireAuth(authClient))
	api.GET("/notifications", notificationHandler.ListNotifications)
	api.POST("/notifications/:id/read", notificationHandler.MarkNotificationRead)
	api.GET("/payment-methods/:id", paymentMethodHandler.GetPaymentMethod)
	api.POST("/payment-methods/attach", paymentMethodHandler.AttachPaymentMethod)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
