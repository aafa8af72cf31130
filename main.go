package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/pageforge/backend/engine"
	"github.com/pageforge/backend/logging"
	"github.com/pageforge/backend/middleware"
)

var (
	svc         *engine.Service
	rateLimiter *middleware.RateLimiter
)

func loadEnv() {
	// Try to load .env.development first (for local development)
	if err := godotenv.Load(".env.development"); err != nil {
		// If .env.development doesn't exist, try regular .env
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

func setupGinMode() {
	// Set Gin mode based on environment variable
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		// Default to release mode if not specified
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func main() {
	// Load environment configuration
	loadEnv()

	// Set up Gin mode
	setupGinMode()

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	// Initialize services
	var err error
	svc, err = engine.New(dataDir)
	if err != nil {
		log.Fatal("Failed to initialize engine:", err)
	}
	defer svc.Shutdown()

	rateLimiter = middleware.NewRateLimiter(2, 5) // 2 requests per second, bucket size of 5

	// Initialize statistics
	stats := logging.Initialize()

	// Initialize Gin router
	r := gin.Default()

	// Add middlewares
	r.Use(middleware.ErrorHandler())
	r.Use(rateLimiter.RateLimit())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.Use(middleware.StatsMiddleware(stats))

	// API routes
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		// Engine endpoints
		api.POST("/analyze", analyzePage)
		api.POST("/fix", fixPage)
		api.POST("/extract", extractComponents)

		// Statistics endpoint
		api.GET("/statistics", func(c *gin.Context) {
			c.JSON(http.StatusOK, stats.GetStatistics())
		})
	}

	// Get port from environment variable or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8082" // Default port
	}

	log.Printf("Server starting on http://localhost:%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// pageRequest is the shared request body for all engine endpoints: the raw
// HTML string produced by the page generator.
type pageRequest struct {
	HTML string `json:"html" binding:"required"`
}

func analyzePage(c *gin.Context) {
	var request pageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing html field",
		})
		return
	}

	c.JSON(http.StatusOK, svc.Analyze(request.HTML))
}

func fixPage(c *gin.Context) {
	var request pageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing html field",
		})
		return
	}

	c.JSON(http.StatusOK, svc.Fix(request.HTML))
}

func extractComponents(c *gin.Context) {
	var request pageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing html field",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"components": svc.Extract(request.HTML),
	})
}
