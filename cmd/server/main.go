package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"book-scout/internal/config"
	"book-scout/internal/handler"
	"book-scout/internal/middleware"
	"book-scout/internal/moderation"
	"book-scout/internal/ollama"
	"book-scout/internal/openlibrary"
	"book-scout/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[FATAL] Failed to load configuration: %v", err)
	}

	log.Printf("[INFO] Starting Book Scout env=%s", cfg.Env)

	// The moderation word list is loaded once here and injected, never held
	// as package state.
	filter := moderation.NewFilter()
	log.Printf("[INFO] Moderation filter initialized")

	generator := ollama.New(cfg.OllamaURL, cfg.OllamaModel, cfg.GenerateTimeout)
	searcher := openlibrary.New(cfg.OpenLibraryURL, cfg.SearchTimeout)
	searchPipeline := pipeline.New(generator, searcher, filter)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": pipeline.UnexpectedMessage,
		})
	}))

	// Security headers (before CORS)
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestID())

	allowedOrigins := []string{}
	if gin.Mode() != gin.ReleaseMode {
		allowedOrigins = append(allowedOrigins, "http://localhost:5173")
	}
	allowedOrigins = append(allowedOrigins, cfg.AllowedOrigins...)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	ipLimiter := middleware.NewIPRateLimiter(rate.Every(cfg.RateLimitInterval), cfg.RateLimitBurst)
	dailyQuota := middleware.NewDailyQuota(cfg.DailyQuota)
	log.Printf("[INFO] Rate limiting enabled (burst=%d daily=%d)", cfg.RateLimitBurst, cfg.DailyQuota)

	healthHandler := handler.NewHealthHandler(cfg.OllamaURL, cfg.OpenLibraryURL)
	searchHandler := handler.NewSearchHandler(searchPipeline)

	// Health check endpoints, no rate limiting
	r.GET("/health", healthHandler.HandleHealth)
	r.GET("/ready", healthHandler.HandleReadiness)

	r.POST("/search-books",
		middleware.RateLimitMiddleware(ipLimiter, dailyQuota),
		searchHandler.HandleSearchBooks)

	log.Printf("[INFO] Server ready port=%s ollama=%s model=%s", cfg.Port, cfg.OllamaURL, cfg.OllamaModel)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
