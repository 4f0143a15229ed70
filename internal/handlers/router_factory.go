package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"servicelog/internal/config"
	"servicelog/internal/middleware"
	"servicelog/internal/observability"
	"servicelog/internal/services"
	"servicelog/internal/version"
)

// NewRouter creates the API router with all middleware and routes wired.
func NewRouter(
	cfg *config.Config,
	data *services.DataService,
	reports *services.ReportService,
	logs *services.ServiceLogService,
	reference *services.ReferenceService,
	logger *observability.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// HTTP request logging through the observability logger
	router.Use(func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  latency.Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		switch {
		case statusCode >= 500:
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		case statusCode >= 400:
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		default:
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	})

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "servicelog"})
	})

	// OpenTelemetry middleware for HTTP tracing with automatic error attributes
	router.Use(observability.GinMiddlewareWithErrorHandling("servicelog"))

	// Response validation against the declared API shapes
	router.Use(middleware.ResponseValidationMiddleware(logger))

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	// CORS for the dashboard and form frontends
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Security headers
	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	dashboardHandler := NewDashboardHandler(data, reports, logger)
	serviceLogHandler := NewServiceLogHandler(logs, logger)
	referenceHandler := NewReferenceHandler(reference, logger)
	adminHandler := NewAdminHandler(logs, logger)

	v1 := router.Group("/v1")
	{
		v1.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"service":   "servicelog",
				"version":   version.Version,
				"commit":    version.Commit,
				"buildTime": version.BuildTime,
			})
		})

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/summary", dashboardHandler.GetSummary)
			dashboard.GET("/urgent", dashboardHandler.GetUrgent)
			dashboard.GET("/trends", dashboardHandler.GetTrends)
			dashboard.GET("/distributions", dashboardHandler.GetDistributions)
			dashboard.GET("/technicians", dashboardHandler.GetTechnicianRollup)
			dashboard.GET("/customers", dashboardHandler.GetCustomerRollup)
			dashboard.GET("/recent", dashboardHandler.GetRecentActivity)
			dashboard.GET("/instruments", dashboardHandler.GetInstrumentInsights)
			dashboard.POST("/refresh", dashboardHandler.Refresh)
		}

		serviceLogs := v1.Group("/service-logs")
		{
			serviceLogs.POST("", serviceLogHandler.Submit)
			serviceLogs.PATCH("/:call_id", serviceLogHandler.Update)
			serviceLogs.GET("/unsolved", serviceLogHandler.Unsolved)
		}

		ref := v1.Group("/reference")
		{
			ref.GET("/technicians", referenceHandler.GetTechnicians)
			ref.GET("/customers", referenceHandler.GetCustomers)
			ref.GET("/instruments", referenceHandler.GetInstruments)
			ref.GET("/serial/:serial", referenceHandler.LookupSerial)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/pending", adminHandler.ListPending)
			admin.POST("/pending/:call_id/approve", adminHandler.Approve)
			admin.POST("/pending/:call_id/reject", adminHandler.Reject)
		}
	}

	return router
}
