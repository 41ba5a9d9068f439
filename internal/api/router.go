package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/hrdesk-io/hrdesk/internal/auth"
	"github.com/hrdesk-io/hrdesk/internal/chat"
	"github.com/hrdesk-io/hrdesk/internal/handlers"
	"github.com/hrdesk-io/hrdesk/internal/middleware"
	"github.com/hrdesk-io/hrdesk/internal/realtime"
	"github.com/hrdesk-io/hrdesk/internal/services"
)

// Options bundles everything the router needs.
type Options struct {
	DB            *gorm.DB
	JWT           *auth.JWTService
	Hub           *realtime.Hub
	Chat          *chat.Hub
	Requests      *services.RequestService
	Notifications *services.NotificationService
	Urgent        *services.UrgentService
	Summary       *services.SummaryService
	Users         *services.UserService

	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
}

// NewRouter assembles the HTTP surface: public health and metrics, the
// authenticated employee API, the admin API, and the websocket endpoints.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.SecurityHeaders())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	if opts.RateLimit > 0 {
		window := opts.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		router.Use(middleware.RateLimit(opts.RateLimit, window))
	}

	router.NoRoute(middleware.NotFoundHandler)

	health := handlers.NewHealthHandler(opts.DB)
	router.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requestHandler := handlers.NewRequestHandler(opts.Requests)
	notificationHandler := handlers.NewNotificationHandler(opts.Notifications)
	urgentHandler := handlers.NewUrgentHandler(opts.Urgent)
	summaryHandler := handlers.NewSummaryHandler(opts.Summary)
	userHandler := handlers.NewUserHandler(opts.Users)
	realtimeHandler := handlers.NewRealtimeHandler(opts.JWT, opts.Hub, opts.Chat)

	// Websocket dials carry the token as a query parameter, so these two
	// routes authenticate inside the handler instead of the middleware.
	router.GET("/api/realtime", realtimeHandler.Streams)
	router.GET("/api/chat", realtimeHandler.Chat)

	authed := router.Group("/api")
	authed.Use(middleware.Auth(opts.JWT))
	{
		authed.GET("/me", userHandler.Me)
		authed.GET("/requests", requestHandler.ListMine)
		authed.POST("/requests", requestHandler.Submit)
		authed.GET("/notifications", notificationHandler.ListMine)
		authed.GET("/urgent-messages", urgentHandler.ListMine)
		authed.POST("/urgent-messages", urgentHandler.Send)
	}

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/summary", summaryHandler.Summary)
		admin.GET("/users", userHandler.ListAll)

		admin.GET("/requests", requestHandler.ListAll)
		admin.POST("/requests/:slug/:id/status", requestHandler.UpdateStatus)
		admin.POST("/requests/upload-file/:slug/:id", requestHandler.UploadFile)
		admin.DELETE("/requests/:slug/:id", requestHandler.Delete)

		admin.GET("/notifications/all", notificationHandler.ListAll)
		admin.POST("/notifications/:id/read", notificationHandler.MarkRead)
		admin.POST("/notifications/read-all", notificationHandler.MarkAllRead)

		admin.GET("/urgent-messages", urgentHandler.ListAll)
		admin.POST("/urgent-messages/:id/reply", urgentHandler.Reply)
		admin.DELETE("/urgent-messages/:id", urgentHandler.Delete)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	cfg.AllowCredentials = len(origins) > 0
	return cfg
}
