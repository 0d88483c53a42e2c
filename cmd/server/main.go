package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/application/services"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/bootstrap"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/infrastructure/database"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/infrastructure/persistence"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/interfaces/middleware"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/interfaces/rest"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
)

func main() {
	// Load .env if present; real deployments set env directly
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️  No .env file found, using environment variables")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = constants.DefaultPort
	}

	// Initialize database connection
	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	if err := bootstrap.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Wire repositories
	tm := persistence.NewTransactionManager(db)
	sqlDB := db.DB()
	flowRepo := persistence.NewFlowRepository(sqlDB, tm)
	ticketRepo := persistence.NewTicketRepository(sqlDB, tm)
	historyRepo := persistence.NewHistoryRepository(sqlDB, tm)
	taskRepo := persistence.NewParallelTaskRepository(sqlDB, tm)
	userRepo := persistence.NewUserRepository(sqlDB, tm)
	notificationRepo := persistence.NewNotificationRepository(sqlDB, tm)

	// Wire services
	notificationSvc := services.NewNotificationService(notificationRepo)
	documentSvc := services.NewDocumentService()
	assignmentResolver := services.NewAssignmentResolverService(userRepo)
	stepResolver := services.NewStepResolver(flowRepo)
	engine := services.NewWorkflowEngine(
		services.NewTicketTxRunner(tm),
		ticketRepo,
		historyRepo,
		taskRepo,
		userRepo,
		flowRepo,
		assignmentResolver,
		stepResolver,
		notificationSvc,
		documentSvc,
	)
	ticketSvc := services.NewTicketService(ticketRepo, historyRepo, taskRepo)
	authSvc := services.NewAuthService(userRepo)

	// Warm the role hierarchy cache used by boss-chain resolution
	if err := assignmentResolver.RefreshRoleHierarchy(context.Background()); err != nil {
		log.Printf("⚠️  Warning: Failed to load role hierarchy: %v", err)
	} else {
		log.Println("📦 Role hierarchy loaded")
	}

	// Create Gin router
	router := gin.Default()
	router.Use(middleware.Cors())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	// Initialize handlers
	authHandler := rest.NewAuthHandler(authSvc)
	workflowHandler := rest.NewWorkflowHandler(engine, ticketSvc)
	notificationHandler := rest.NewNotificationHandler(notificationSvc)

	requireAuth := middleware.RequireAuth()

	// API routes
	api := router.Group("/api")
	{
		// Public auth routes (no authentication required)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// Ticket and workflow routes
		tickets := api.Group("/tickets")
		tickets.Use(requireAuth)
		{
			tickets.POST("", workflowHandler.CreateTicket)
			tickets.GET("/:id", workflowHandler.GetTicket)
			tickets.POST("/:id/start", workflowHandler.StartFlow)
			tickets.POST("/:id/transition", workflowHandler.Transition)
			tickets.GET("/:id/preview", workflowHandler.Preview)
			tickets.POST("/:id/approve", workflowHandler.Approve)
			tickets.POST("/:id/sign", workflowHandler.Sign)
			tickets.GET("/:id/history", workflowHandler.History)
			tickets.GET("/:id/tasks", workflowHandler.Tasks)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}
	}

	// Start the SLA sweep
	monitor := services.NewSLAMonitor(ticketRepo, historyRepo, flowRepo, notificationSvc)
	schedule := os.Getenv("SLA_SWEEP_SCHEDULE")
	if schedule == "" {
		schedule = constants.DefaultSLASchedule
	}
	if err := monitor.Start(schedule); err != nil {
		log.Fatalf("Failed to start SLA monitor: %v", err)
	}
	log.Printf("⏰ SLA monitor started (schedule %q)", schedule)

	// Start server
	log.Println("\n═══════════════════════════════════════════════════════════════════════════")
	log.Println("🚀 Help Desk Workflow Backend Started Successfully")
	log.Println("═══════════════════════════════════════════════════════════════════════════")
	log.Printf("\n📍 Server:         http://localhost:%s", port)
	log.Printf("🔐 Auth API:       http://localhost:%s/api/auth", port)
	log.Printf("🎫 Tickets API:    http://localhost:%s/api/tickets", port)
	log.Printf("🔔 Notifications:  http://localhost:%s/api/notifications", port)
	log.Printf("💚 Health check:   http://localhost:%s/health\n", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	monitor.Stop()
	log.Println("🛑 SLA monitor stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
