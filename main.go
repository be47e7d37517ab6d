package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/emifrog/ChatBotAI-RH-Backend/database"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/cache"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/config"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/jobs"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/routes"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/services"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - using environment variables")
	}

	cfg := config.New()

	// Initialize cache (degrades to no-op when Redis is unconfigured)
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, continuing without cache: %v", err)
			cacheClient = cache.NewNoop()
		} else {
			cacheClient = redisCache
		}
	} else {
		log.Println("⚠️  REDIS_URL not set - running without cache")
		cacheClient = cache.NewNoop()
	}

	// Initialize storage
	var store storage.Store
	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect(cfg)

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.Conversation{},
			&models.Message{},
			&models.LeaveBalance{},
			&models.LeaveRequest{},
			&models.Notification{},
			&models.Payslip{},
			&models.Training{},
			&models.TrainingEnrollment{},
			&models.Feedback{},
			&models.IntentLog{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}

	// Completion service (optional; canned fallback answers without it)
	var completer services.Completer
	if cfg.OpenRouterAPIKey != "" {
		completer = services.NewAIService(
			cfg.OpenRouterAPIKey,
			cfg.OpenRouterBaseURL,
			cfg.OpenRouterModel,
			cfg.OpenRouterReferrer,
			cfg.OpenRouterTitle,
		)
		log.Println("✅ Completion service configured")
	} else {
		log.Println("⚠️  OPENROUTER_API_KEY not set - AI fallback disabled")
	}

	// Initialize all services
	authService := services.NewAuthService(cfg.JWTSecret, cacheClient)
	chatService := services.NewChatService(store)
	leaveService := services.NewLeaveService(store, cacheClient)
	payrollService := services.NewPayrollService(store, cacheClient)
	trainingService := services.NewTrainingService(store, cacheClient)
	classifier := services.NewClassifier()
	responder := services.NewResponder(leaveService, payrollService, trainingService, completer)
	actionRouter := services.NewActionRouter(leaveService, payrollService, trainingService)
	orchestrator := services.NewOrchestrator(authService, chatService, classifier, responder, actionRouter)

	// Start the pending request reminder job
	notificationJob := jobs.NewNotificationJob(store)
	notificationJob.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "ChatBotAI RH Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Service info endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "ChatBotAI RH Backend",
			"version": "1.0.0",
			"status":  "healthy",
			"services": fiber.Map{
				"sessions": orchestrator.ActiveSessions(),
				"ai":       completer != nil,
			},
		})
	})

	routes.SetupRoutes(app, routes.Services{
		Auth:         authService,
		Chat:         chatService,
		Leave:        leaveService,
		Payroll:      payrollService,
		Training:     trainingService,
		Responder:    responder,
		Orchestrator: orchestrator,
	})

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		notificationJob.Stop()
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 ChatBotAI RH Backend starting on port %s", cfg.Port)
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}
