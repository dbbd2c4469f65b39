package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/gradenotify/internal/config"
	"anoa.com/gradenotify/internal/entity"
	"anoa.com/gradenotify/internal/middleware"

	assessmentRepo "anoa.com/gradenotify/internal/modules/assessment/repository"
	userRepo "anoa.com/gradenotify/internal/modules/user/repository"

	notiHttp "anoa.com/gradenotify/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/gradenotify/internal/modules/notification/repository"
	notifService "anoa.com/gradenotify/internal/modules/notification/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine  *gin.Engine
	http    *http.Server
	service notifService.NotificationService
	db      *gorm.DB
	logger  *zap.Logger
}

// NewServer wires repositories, the notification service and the HTTP
// routes. redisClient may be nil, in which case nothing is announced.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	userRepository := userRepo.NewUserRepository(db)
	assessmentRepository := assessmentRepo.NewAssessmentRepository(db)

	// Notification Module
	var publisher notifService.Publisher
	if redisClient != nil {
		publisher = notifService.NewRedisPublisher(redisClient)
	}
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, userRepository, assessmentRepository, publisher, logger)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, logger)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger, "/health"))

	s := &Server{
		engine:  router,
		service: notificationSvc,
		db:      db,
		logger:  logger,
	}

	router.GET("/health", s.health)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Notification routes
		protected.GET("/notifications/unread", notificationHandler.FetchUnread)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.Acknowledge)
		protected.PUT("/notifications/read-all", notificationHandler.AcknowledgeAll)

		// Internal triggers, called by the grading pipeline and the assessment service
		internal := protected.Group("/internal")
		internal.Use(authMiddleware.RequireRole(entity.RoleAdmin))
		{
			internal.POST("/answers/:id/graded", notificationHandler.AnswerGraded)
			internal.POST("/submissions/:id/graded", notificationHandler.SubmissionGraded)
			internal.POST("/submissions/:id/submitted", notificationHandler.SubmissionSubmitted)
			internal.POST("/assessments/:id/published", notificationHandler.AssessmentPublished)
			internal.POST("/assessments/:id/deadline", notificationHandler.AssessmentDeadline)
		}
	}

	s.http = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// NotificationService exposes the wired service for other delivery
// surfaces such as the Kafka consumer.
func (s *Server) NotificationService() notifService.NotificationService {
	return s.service
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
