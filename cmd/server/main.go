package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"motoprice/internal/config"
	"motoprice/internal/handler"
	"motoprice/internal/metrics"
	"motoprice/internal/pricing"
	"motoprice/internal/regression"
	"motoprice/internal/repository"
	"motoprice/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("MotoPrice Suggestion Engine")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("✅ Connected to PostgreSQL database")

	// Initialize the regression model. A remote serving endpoint takes
	// precedence; otherwise the local artifact is loaded. The similarity
	// encoder only exists for the local model.
	var (
		predictor *pricing.Predictor
		encoder   service.FeatureEncoder
	)
	if cfg.Model.ServeURL != "" {
		remote := regression.NewHTTPModel(cfg.Model.ServeURL, time.Duration(cfg.Model.Timeout)*time.Second)
		predictor = pricing.NewPredictor(remote, nil, cfg.Model.InverseLog)
		log.Printf("✅ Remote model serving: %s", cfg.Model.ServeURL)
		log.Println("⚠️  Similarity search is unavailable with a remote model")
	} else {
		local, err := regression.Load(cfg.Model.ArtifactPath)
		if err != nil {
			log.Fatalf("Failed to load model artifact %s: %v", cfg.Model.ArtifactPath, err)
		}
		predictor = pricing.NewPredictor(local, local.FeatureNames(), local.InverseLog())
		encoder = local
		log.Printf("✅ Model artifact loaded: %s", cfg.Model.ArtifactPath)
	}

	// Initialize CSV audit trail
	audit, err := repository.NewAuditLog(cfg.Audit.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize audit log in %s: %v", cfg.Audit.Dir, err)
	}
	log.Printf("✅ CSV audit trail: %s", cfg.Audit.Dir)

	// Initialize services
	reg := metrics.NewRegistry()
	scorer := pricing.NewScorer(cfg.Pricing.RelativeSigma, cfg.Pricing.ZThreshold)
	pricingService := service.NewPricingService(predictor, scorer, repo, audit, reg)
	moderationService := service.NewModerationService(repo, predictor, scorer, encoder, audit, reg)
	listingService := service.NewListingService(repo, predictor, encoder)

	log.Println("✅ Services initialized")

	// Initialize handlers
	pricingHandler := handler.NewPricingHandler(pricingService, cfg.Search.HistoryLimit)
	listingHandler := handler.NewListingHandler(listingService, cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	moderationHandler := handler.NewModerationHandler(moderationService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "motoprice-suggestion-engine",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(reg.Handler()))

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Prediction and anomaly checks
		apiV1.POST("/predict", pricingHandler.Predict)
		apiV1.POST("/anomaly", pricingHandler.CheckAnomaly)
		apiV1.POST("/anomaly/history", pricingHandler.SaveCheck)
		apiV1.GET("/anomaly/history", pricingHandler.History)

		// Listings and moderation
		apiV1.POST("/listings", moderationHandler.Submit)
		apiV1.GET("/listings", listingHandler.Search)
		apiV1.GET("/listings/:id", listingHandler.Get)
		apiV1.GET("/listings/:id/similar", listingHandler.Similar)
		apiV1.POST("/listings/:id/moderate", moderationHandler.Moderate)
		apiV1.GET("/submissions", listingHandler.Submissions)

		// Market aggregates
		apiV1.GET("/market/stats", listingHandler.MarketStats)
	}

	// Serve static files (frontend)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API: http://localhost:%d/api/v1", cfg.Server.Port)
	log.Printf("📊 Dashboard: http://localhost:%d", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
