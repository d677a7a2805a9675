package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware so embedded display surfaces can refresh quotes client-side
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	// Public display endpoint
	r.GET("/display", handler.GetDisplayQuote)

	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Admin API endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.GET("/quotes", handler.APIListQuotes)
			api.POST("/quotes", handler.APICreateQuote)
			api.GET("/quotes/:id", handler.APIGetQuote)
			api.PATCH("/quotes/:id", handler.APIUpdateQuote)
			api.DELETE("/quotes/:id", handler.APIDeleteQuote)
			api.POST("/quotes/bulk", handler.APIBulkQuoteAction)
			api.GET("/quotes/:id/sets", handler.APIGetQuoteSets)
			api.PUT("/quotes/:id/sets", handler.APISyncQuoteSets)

			api.GET("/sets", handler.APIListSets)
			api.POST("/sets", handler.APICreateSet)
			api.GET("/sets/:id", handler.APIGetSet)
			api.PATCH("/sets/:id", handler.APIUpdateSet)
			api.DELETE("/sets/:id", handler.APIDeleteSet)
			api.POST("/sets/:id/quotes/:quoteId", handler.APIAssignQuote)
			api.DELETE("/sets/:id/quotes/:quoteId", handler.APIUnassignQuote)

			api.GET("/search", handler.APISearchQuotes)
			api.GET("/random", handler.APIRandomQuote)
			api.POST("/import", handler.APIImportQuote)
			api.POST("/import/bulk", handler.APIBulkImport)
		}
		slog.Info("Admin API endpoints enabled with authentication")
	} else {
		slog.Info("Admin API endpoints disabled (API_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"display": "/display?set=<slug>&category=<name>",
			"health":  "/health",
			"stats":   "/stats",
		}

		// Add API endpoints if authentication is enabled
		if apiAccessKey != "" {
			endpoints["quotes"] = "/api/quotes (requires X-API-Key header)"
			endpoints["sets"] = "/api/sets (requires X-API-Key header)"
			endpoints["search"] = "/api/search?query=<term> (requires X-API-Key header)"
			endpoints["import"] = "/api/import (POST, requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "QuoteFlex",
			"description": "Quote management service with set-scoped random display and external quote import",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get API key from X-API-Key header
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// Check if API key is provided and matches
		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		// Continue to next middleware/handler
		c.Next()
	}
}
