package server

import (
	"context"
	"os"
	"strings"
	"time"

	"evergreenrx.com/pharmanotify/internal/alert"
	"evergreenrx.com/pharmanotify/internal/config"
	"evergreenrx.com/pharmanotify/internal/middleware"

	intakeHttp "evergreenrx.com/pharmanotify/internal/modules/intake/delivery/http"
	intakeRepo "evergreenrx.com/pharmanotify/internal/modules/intake/repository"
	intakeService "evergreenrx.com/pharmanotify/internal/modules/intake/service"

	notifHttp "evergreenrx.com/pharmanotify/internal/modules/notification/delivery/http"
	"evergreenrx.com/pharmanotify/internal/modules/notification/gateway"
	notifRepo "evergreenrx.com/pharmanotify/internal/modules/notification/repository"
	notifService "evergreenrx.com/pharmanotify/internal/modules/notification/service"

	userHttp "evergreenrx.com/pharmanotify/internal/modules/user/delivery/http"
	userRepo "evergreenrx.com/pharmanotify/internal/modules/user/repository"
	userService "evergreenrx.com/pharmanotify/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	usersRepository := userRepo.NewUserRepository(db)

	authSvc := userService.NewAuthService(usersRepository)
	authHandler := userHttp.NewAuthHandler(authSvc)

	mailer := alert.NewMailerFromEnv()

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient, mailer)

	hub := gateway.NewHub()
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, hub)

	if redisClient != nil {
		subscriber := gateway.NewSubscriber(hub, redisClient)
		go subscriber.Run(context.Background())
	}

	// Intake Module (storefront event source)
	intakeRepository := intakeRepo.NewIntakeRepository(db)
	intakeSvc := intakeService.NewIntakeService(intakeRepository, notificationSvc)
	intakeHandler := intakeHttp.NewIntakeHandler(intakeSvc, redisClient, cfg.RateLimitIntake)

	router := gin.New()

	setupCORS(router)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(usersRepository)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// Storefront intake (public, rate limited per client IP)
	api.POST("/contact", intakeHandler.SubmitContact)
	api.POST("/appointments", intakeHandler.SubmitAppointment)
	api.POST("/refills", intakeHandler.SubmitRefill)
	api.POST("/transfers", intakeHandler.SubmitTransfer)

	// Machine-to-machine intake (shared secret, no user token)
	webhooks := api.Group("/webhooks")
	webhooks.Use(middleware.RequireWebhookSecret())
	{
		webhooks.POST("/commerce", intakeHandler.CommerceWebhook)
		webhooks.POST("/inventory", intakeHandler.InventoryWebhook)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Any authenticated session may open a socket; the handler decides
		// which rooms the connection can join based on the role.
		protected.GET("/notifications/ws", authMiddleware.ResolveUser(), notificationHandler.HandleWebSocket)

		notifications := protected.Group("/notifications")
		notifications.Use(authMiddleware.RequireAdmin())
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
			notifications.PUT("/mark-all-read", notificationHandler.MarkAllAsRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Webhook-Secret"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
