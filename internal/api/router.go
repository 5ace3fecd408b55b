package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"streammeter/internal/api/handlers"
	"streammeter/internal/api/middleware"
)

// RouterConfig holds dependencies for the API router
type RouterConfig struct {
	Manager handlers.SessionManager
	Health  handlers.HealthStatus
	Ledger  handlers.LedgerReader
	Store   handlers.PublishStore
	Logger  *slog.Logger
}

// NewRouter creates and configures the Gin router
func NewRouter(config RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(config.Logger))
	router.Use(middleware.Logging(config.Logger))
	router.Use(middleware.ContentType())
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		streamHandler := handlers.NewStreamHandler(config.Manager, config.Logger)
		api.POST("/stream/start", streamHandler.StartStream)
		api.POST("/stream/stop", streamHandler.StopStream)
		api.GET("/stream/status/:sessionId", streamHandler.GetStatus)
		api.GET("/stream/sessions", streamHandler.ListSessions)

		healthHandler := handlers.NewHealthHandler(config.Health)
		api.GET("/health", healthHandler.GetHealth)

		ledgerHandler := handlers.NewLedgerHandler(config.Ledger)
		api.GET("/ledger", ledgerHandler.GetLedger)

		if config.Store != nil {
			publishesHandler := handlers.NewPublishesHandler(config.Store, config.Logger)
			api.GET("/publishes", publishesHandler.ListPublishes)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
