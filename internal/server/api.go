package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hanapbuhay/backend/internal/auth"
	"github.com/hanapbuhay/backend/internal/booking"
	"github.com/hanapbuhay/backend/internal/cache"
	"github.com/hanapbuhay/backend/internal/config"
	apierrors "github.com/hanapbuhay/backend/internal/errors"
	"github.com/hanapbuhay/backend/internal/geo"
	"github.com/hanapbuhay/backend/internal/logging"
	"github.com/hanapbuhay/backend/internal/messaging"
	"github.com/hanapbuhay/backend/internal/middleware"
	"github.com/hanapbuhay/backend/internal/monitoring"
	"github.com/hanapbuhay/backend/internal/notify"
	"github.com/hanapbuhay/backend/internal/ratelimit"
	"github.com/hanapbuhay/backend/internal/rating"
	"github.com/hanapbuhay/backend/internal/report"
	"github.com/jackc/pgx/v5/pgxpool"
)

// APIServer represents the main API server
type APIServer struct {
	config           *config.Config
	router           *gin.Engine
	db               *pgxpool.Pool
	authService      *auth.Service
	bookingService   *booking.Service
	messagingService *messaging.Service
	ratingService    *rating.Service
	reportService    *report.Service
	notifier         *notify.Dispatcher
	matcher          *geo.Matcher
	jwtAuthenticator *middleware.JWTAuthenticator
	limiter          *ratelimit.Limiter
}

// NewAPIServer creates a new API server instance
func NewAPIServer(cfg *config.Config, db *pgxpool.Pool, redis *cache.Redis) *APIServer {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(logging.RequestLogger())

	notifier := notify.NewDispatcher(db)

	srv := &APIServer{
		config:           cfg,
		router:           router,
		db:               db,
		authService:      auth.NewService(db, &cfg.JWT),
		bookingService:   booking.NewService(db, notifier),
		messagingService: messaging.NewService(db, notifier),
		ratingService:    rating.NewService(db, notifier),
		reportService:    report.NewService(db, notifier),
		notifier:         notifier,
		matcher:          geo.NewMatcher(cfg.Geo.MaxDistanceKm, geo.Coordinate{Lat: cfg.Geo.DefaultLat, Lng: cfg.Geo.DefaultLng}),
		jwtAuthenticator: middleware.NewJWTAuthenticator(&cfg.JWT),
		limiter:          ratelimit.New(redis, &cfg.RateLimit),
	}

	srv.setupRoutes()
	return srv
}

// Router returns the gin router
func (s *APIServer) Router() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *APIServer) setupRoutes() {
	// Health check
	s.router.GET("/health", s.healthCheck)

	// Rate limiter applies to write endpoints only
	limited := s.limiter.Middleware()

	// Auth routes (public)
	authGroup := s.router.Group("/auth")
	{
		authGroup.POST("/register", limited, s.handleRegister)
		authGroup.POST("/login", limited, s.handleLogin)
		authGroup.POST("/refresh", s.handleRefresh)
	}

	// Profile completion (authorized by continuation token, not JWT)
	profiles := s.router.Group("/profiles")
	{
		profiles.POST("/client", limited, s.handleCreateClientProfile)
		profiles.POST("/worker", limited, s.handleCreateWorkerProfile)
	}

	// Worker discovery (public)
	workers := s.router.Group("/workers")
	{
		workers.GET("/nearby", s.handleNearbyWorkers)
		workers.GET("/:id/reviews", s.handleWorkerReviews)
	}

	// Booking routes (protected)
	bookingGroup := s.router.Group("/booking")
	bookingGroup.Use(s.jwtAuthenticator.JWTAuth())
	{
		bookingGroup.POST("/request", middleware.RequireClient(), limited, s.handleCreateBooking)
		bookingGroup.GET("/requests", middleware.RequireWorker(), s.handleListPendingBookings)
		bookingGroup.POST("/accept/:id", middleware.RequireWorker(), limited, s.handleAcceptBooking)
		bookingGroup.POST("/reject/:id", middleware.RequireWorker(), limited, s.handleRejectBooking)
		bookingGroup.POST("/complete/:id", middleware.RequireWorker(), limited, s.handleCompleteBooking)
	}

	// Messaging routes (protected)
	messages := s.router.Group("/messages")
	messages.Use(s.jwtAuthenticator.JWTAuth())
	{
		messages.GET("/conversations", s.handleListConversations)
		messages.POST("/send", limited, s.handleSendMessage)
		messages.GET("/:id", s.handleListMessages)
		messages.POST("/:id/read", s.handleMarkConversationRead)
	}

	// Review routes (protected, client only)
	reviews := s.router.Group("/reviews")
	reviews.Use(s.jwtAuthenticator.JWTAuth())
	{
		reviews.POST("", middleware.RequireClient(), limited, s.handleSubmitReview)
	}

	// Notification routes (protected)
	notifications := s.router.Group("/notifications")
	notifications.Use(s.jwtAuthenticator.JWTAuth())
	{
		notifications.GET("", s.handleListNotifications)
		notifications.POST("/:id/read", s.handleMarkNotificationRead)
	}

	// Report routes (protected)
	reports := s.router.Group("/reports")
	reports.Use(s.jwtAuthenticator.JWTAuth())
	{
		reports.POST("", limited, s.handleCreateReport)
	}

	// Admin routes (protected - requires admin role)
	admin := s.router.Group("/admin")
	admin.Use(s.jwtAuthenticator.JWTAuth())
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/reports", s.handleAdminListReports)
		admin.POST("/reports/:id/resolve", s.handleAdminResolveReport)
		admin.POST("/reports/:id/dismiss", s.handleAdminDismissReport)
		admin.GET("/users", s.handleAdminListUsers)
		admin.POST("/users/:id/deactivate", s.handleAdminDeactivateUser)
	}
}

// Health check handler
func (s *APIServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "api",
	})
}

// respondError sends a standardized error response
func respondError(c *gin.Context, err *apierrors.APIError) {
	c.JSON(err.HTTPStatus, apierrors.ErrorResponse{
		Error:     *err,
		RequestID: c.GetString("request_id"),
	})
}
