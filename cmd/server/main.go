package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/gescourrier/mail-registry-api/internal/config"
	"github.com/gescourrier/mail-registry-api/internal/constants"
	"github.com/gescourrier/mail-registry-api/internal/database"
	"github.com/gescourrier/mail-registry-api/internal/handlers"
	"github.com/gescourrier/mail-registry-api/internal/middleware"
	"github.com/gescourrier/mail-registry-api/internal/policy"
	"github.com/gescourrier/mail-registry-api/internal/repository"
	"github.com/gescourrier/mail-registry-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	incomingRepo := repository.NewIncomingMailRepository(db)
	outgoingRepo := repository.NewOutgoingMailRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	mailService := services.NewMailService(incomingRepo, outgoingRepo, assignmentRepo)
	assignmentService := services.NewAssignmentService(assignmentRepo, incomingRepo, userRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	incomingHandler := handlers.NewIncomingMailHandler(mailService)
	outgoingHandler := handlers.NewOutgoingMailHandler(mailService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	statisticsHandler := handlers.NewStatisticsHandler()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Mail Registry API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// User administration routes (protected)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth())
		{
			users.GET("", middleware.RequireAction(policy.ListUsers), userHandler.ListUsers)
			users.PUT("/:id", middleware.RequireAction(policy.ManageUsers), userHandler.UpdateUser)
			users.PATCH("/:id/activate", middleware.RequireAction(policy.ManageUsers), userHandler.ActivateUser)
			users.DELETE("/:id", middleware.RequireAction(policy.ManageUsers), userHandler.DeleteUser)
		}

		// Arrival register routes (protected)
		incoming := api.Group("/mails/incoming")
		incoming.Use(middleware.RequireAuth())
		{
			incoming.GET("", incomingHandler.ListMail)
			incoming.GET("/check-unique", incomingHandler.CheckUnique)
			incoming.GET("/:id", incomingHandler.GetMail)
			incoming.GET("/:id/attachment", incomingHandler.GetAttachment)
			incoming.POST("", middleware.RequireAction(policy.WriteMail), incomingHandler.CreateMail)
			incoming.PUT("/:id", middleware.RequireAction(policy.WriteMail), incomingHandler.UpdateMail)
			incoming.DELETE("/:id", middleware.RequireAction(policy.WriteMail), incomingHandler.DeleteMail)
		}

		// Departure register routes (protected)
		outgoing := api.Group("/mails/outgoing")
		outgoing.Use(middleware.RequireAuth())
		{
			outgoing.GET("", outgoingHandler.ListMail)
			outgoing.GET("/check-unique", outgoingHandler.CheckUnique)
			outgoing.GET("/:id", outgoingHandler.GetMail)
			outgoing.GET("/:id/attachment", outgoingHandler.GetAttachment)
			outgoing.POST("", middleware.RequireAction(policy.WriteMail), outgoingHandler.CreateMail)
			outgoing.PUT("/:id", middleware.RequireAction(policy.WriteMail), outgoingHandler.UpdateMail)
			outgoing.DELETE("/:id", middleware.RequireAction(policy.WriteMail), outgoingHandler.DeleteMail)
		}

		// Assignment workflow routes (protected)
		assignments := api.Group("/assignments")
		assignments.Use(middleware.RequireAuth())
		{
			assignments.GET("", assignmentHandler.ListAssignments)
			assignments.GET("/unassigned", assignmentHandler.ListUnassignedMail)
			assignments.GET("/:id", assignmentHandler.GetAssignment)
			assignments.GET("/:id/response-file", assignmentHandler.GetResponseFile)
			assignments.POST("", middleware.RequireAction(policy.ManageAssignments), assignmentHandler.CreateAssignment)
			assignments.PUT("/:id", assignmentHandler.ProcessAssignment)
			assignments.PUT("/:id/reassign", middleware.RequireAction(policy.ManageAssignments), assignmentHandler.ReassignAssignment)
		}

		// Dashboard counters (protected)
		api.GET("/statistics", middleware.RequireAuth(), statisticsHandler.GetStatistics)
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
