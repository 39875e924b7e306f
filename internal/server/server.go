// Package server wires the repositories, services and handlers into a
// Gin router and manages the HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gravadigital/civicpulse-api/internal/ai"
	"github.com/gravadigital/civicpulse-api/internal/auth"
	"github.com/gravadigital/civicpulse-api/internal/config"
	"github.com/gravadigital/civicpulse-api/internal/handlers"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/middleware/requestlog"
	"github.com/gravadigital/civicpulse-api/internal/services"
	"github.com/gravadigital/civicpulse-api/internal/storage/objectstore"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	db         *gorm.DB
	store      *objectstore.Store
}

// New creates a new server instance. store may be nil when object
// storage is not configured; the upload route then returns 503.
func New(cfg *config.Config, db *gorm.DB, store *objectstore.Store) *Server {
	return &Server{
		config: cfg,
		db:     db,
		store:  store,
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	router := s.setupRouter()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(requestlog.New())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if s.config.CORS.AllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(s.config.CORS.AllowOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = strings.Split(s.config.CORS.AllowMethods, ",")
	corsConfig.AllowHeaders = strings.Split(s.config.CORS.AllowHeaders, ",")
	router.Use(cors.New(corsConfig))

	// Repositories
	issueRepo := postgres.NewPostgresIssueRepository(s.db)
	voteRepo := postgres.NewPostgresVoteRepository(s.db)
	commentRepo := postgres.NewPostgresCommentRepository(s.db)
	eventRepo := postgres.NewPostgresEventRepository(s.db)
	profileRepo := postgres.NewPostgresProfileRepository(s.db)
	notifRepo := postgres.NewPostgresNotificationRepository(s.db)

	// Services
	issueService := services.NewIssueService(issueRepo, voteRepo, commentRepo, notifRepo)
	eventService := services.NewEventService(eventRepo)

	issuer := auth.NewTokenIssuer(s.config)
	aiClient := ai.NewClient(s.config.AI)

	// Handlers
	authHandler := handlers.NewAuthHandler(profileRepo, issuer)
	issueHandler := handlers.NewIssueHandler(issueService, issueRepo, voteRepo, commentRepo)
	eventHandler := handlers.NewEventHandler(eventService, eventRepo)
	profileHandler := handlers.NewProfileHandler(profileRepo, issueRepo, voteRepo, commentRepo, eventRepo)
	notifHandler := handlers.NewNotificationHandler(notifRepo)
	adminHandler := handlers.NewAdminHandler(issueService, issueRepo, voteRepo, commentRepo, eventRepo, profileRepo)
	aiHandler := handlers.NewAIHandler(aiClient, issueRepo, commentRepo)
	uploadHandler := handlers.NewUploadHandler(s.store)

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		status := "healthy"
		if err := postgres.HealthCheck(s.db); err != nil {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "CivicPulse API is running",
			"status":  status,
		})
	})

	s.setupAPIRoutes(router, issuer, authHandler, issueHandler, eventHandler,
		profileHandler, notifHandler, adminHandler, aiHandler, uploadHandler)

	return router
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(
	router *gin.Engine,
	issuer *auth.TokenIssuer,
	authHandler *handlers.AuthHandler,
	issueHandler *handlers.IssueHandler,
	eventHandler *handlers.EventHandler,
	profileHandler *handlers.ProfileHandler,
	notifHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler,
	aiHandler *handlers.AIHandler,
	uploadHandler *handlers.UploadHandler,
) {
	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", auth.RequireAuth(issuer), authHandler.Me)
	}

	issues := api.Group("/issues")
	{
		issues.GET("", issueHandler.List)
		issues.GET("/stats", issueHandler.Stats)
		issues.GET("/categories", issueHandler.ListCategories)
		issues.GET("/:id", issueHandler.Get)
		issues.GET("/:id/comments", issueHandler.ListComments)

		authed := issues.Group("", auth.RequireAuth(issuer))
		{
			authed.POST("", issueHandler.Create)
			authed.PUT("/:id", issueHandler.Update)
			authed.DELETE("/:id", issueHandler.Delete)
			authed.GET("/:id/vote", issueHandler.GetVote)
			authed.POST("/:id/vote", issueHandler.Vote)
			authed.POST("/:id/comments", issueHandler.CreateComment)
		}

		issues.POST("/categories", auth.RequireAuth(issuer), auth.RequireAdmin(), issueHandler.CreateCategory)
	}

	events := api.Group("/events")
	{
		events.GET("", eventHandler.List)
		events.GET("/:id", eventHandler.Get)

		authed := events.Group("", auth.RequireAuth(issuer))
		{
			authed.POST("", eventHandler.Create)
			authed.PUT("/:id", eventHandler.Update)
			authed.DELETE("/:id", eventHandler.Delete)
			authed.GET("/:id/attend", eventHandler.GetAttendance)
			authed.POST("/:id/attend", eventHandler.Attend)
		}
	}

	profiles := api.Group("/profiles", auth.RequireAuth(issuer))
	{
		profiles.GET("", profileHandler.List)
		profiles.GET("/:id", profileHandler.Get)
		profiles.PUT("/:id", profileHandler.Update)
	}

	notifications := api.Group("/notifications", auth.RequireAuth(issuer))
	{
		notifications.GET("", notifHandler.List)
		notifications.POST("", auth.RequireAdmin(), notifHandler.Create)
		notifications.PUT("/:id/read", notifHandler.MarkRead)
	}

	api.POST("/uploads", auth.RequireAuth(issuer), uploadHandler.Upload)

	admin := api.Group("/admin", auth.RequireAuth(issuer), auth.RequireAdmin())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/issues", adminHandler.ListIssues)
		admin.PATCH("/issues/:id/status", adminHandler.ChangeIssueStatus)
		admin.GET("/users", adminHandler.ListUsers)
		admin.PATCH("/users/:id", adminHandler.PatchUser)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.GET("/reports", adminHandler.Reports)
	}

	aiRoutes := api.Group("/ai", auth.RequireAuth(issuer))
	{
		aiRoutes.POST("/categorize", aiHandler.Categorize)
		aiRoutes.POST("/moderate", aiHandler.Moderate)
		aiRoutes.POST("/solutions", aiHandler.Solutions)
		aiRoutes.POST("/summarize", auth.RequireAdmin(), aiHandler.Summarize)
		aiRoutes.GET("/analytics", auth.RequireAdmin(), aiHandler.Analytics)
	}
}
