package main

import (
	"context"
	"incomify/database"
	"incomify/internal/cache"
	"incomify/internal/controllers"
	"incomify/internal/ml"
	"incomify/internal/repository"
	"incomify/internal/services"
	"incomify/internal/session"
	"incomify/routes"
	"log"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Default upstream when ML_API_URL is unset.
const defaultMLAPIURL = "https://family-income-model.onrender.com"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found: %v", err)
	}

	// Connect to database and run migrations
	database.ConnectDatabase()
	if err := database.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	stopMonitor := database.MonitorDBConnections()
	defer stopMonitor()

	predictionRepo := repository.NewPredictionRepository(database.DB)

	// Prediction service client
	mlAPIURL := os.Getenv("ML_API_URL")
	if mlAPIURL == "" {
		mlAPIURL = defaultMLAPIURL
	}

	log.Printf("Using prediction service at %s", mlAPIURL)
	mlClient := ml.NewHTTPMLClient(mlAPIURL)
	defer mlClient.Close()

	// Test prediction service connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mlClient.HealthCheck(ctx); err != nil {
		log.Printf("Warning: prediction service health check failed: %v", err)
		log.Println("The application will start, but predictions will fail until the service is available")
	} else {
		log.Println("Prediction service connection established successfully")
	}

	// Redis is optional: without it the what-if result and model-info caches
	// fall back to in-memory state.
	redisCache, err := cache.NewRedisClient()
	if err != nil {
		log.Printf("Warning: Redis unavailable, caching disabled: %v", err)
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// History recorder worker pool
	workerCount := runtime.NumCPU()
	if workerCount < 3 {
		workerCount = 3
	}

	historyRecorder := services.NewHistoryRecorder(predictionRepo, workerCount)
	log.Printf("Starting history recorder with %d workers...", workerCount)
	historyRecorder.Start()
	defer historyRecorder.Stop()

	modelInfoService := services.NewModelInfoService(mlClient, redisCache)

	sessions := session.NewStore()
	stopSweeper := sessions.StartSweeper(10*time.Minute, 2*time.Hour)
	defer stopSweeper()

	// Initialize controllers
	predictionController := controllers.NewPredictionController(
		sessions,
		mlClient,
		predictionRepo,
		historyRecorder,
		redisCache,
	)
	modelInfoController := controllers.NewModelInfoController(modelInfoService)

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message":    "Incomify API is running",
			"version":    "1.0.0",
			"status":     "healthy",
			"ml_service": mlAPIURL,
		})
	})

	routes.RegisterPredictionRoutes(router, predictionController)
	routes.RegisterModelInfoRoutes(router, modelInfoController)

	// Debug endpoints
	router.GET("/debug/stats", func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		stats := gin.H{
			"goroutines": runtime.NumGoroutine(),
			"memory_mb":  m.Alloc / 1024 / 1024,
			"sessions":   sessions.Count(),
			"recorder":   historyRecorder.GetStatus(),
		}

		if redisCache != nil {
			if cacheStatus, err := redisCache.GetStatus(); err == nil {
				stats["cache"] = cacheStatus
			} else {
				stats["cache"] = gin.H{"connected": false, "error": err.Error()}
			}
		}

		c.JSON(200, stats)
	})

	router.GET("/debug/database", func(c *gin.Context) {
		sqlDB, err := database.DB.DB()
		if err != nil {
			c.JSON(500, gin.H{
				"database_health": false,
				"error":           err.Error(),
			})
			return
		}

		var result int
		row := sqlDB.QueryRowContext(c.Request.Context(), "SELECT 1")
		err = row.Scan(&result)
		isHealthy := err == nil && result == 1

		c.JSON(200, gin.H{
			"database_health": isHealthy,
		})
	})

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Printf("Health Check: http://localhost:%s/prediction/health", port)

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("Incomify API server started successfully on port %s", port)

	if err := server.ListenAndServe(); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
