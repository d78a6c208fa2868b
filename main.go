package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"smarthousing-backend/common"
	"smarthousing-backend/db"
	"smarthousing-backend/monitoring"
	"smarthousing-backend/sections"
	"smarthousing-backend/sections/common/auth"
	"smarthousing-backend/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func main() {
	// Set up structured logging
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	// Load environment variables
	if _, err := os.Stat(common.PRIVATE_CREDENTIALS_DOTENV); err == nil {
		if err := godotenv.Load(common.PRIVATE_CREDENTIALS_DOTENV); err != nil {
			slog.Error("Failed to load .env.private file", "error", err)
			os.Exit(1)
		}
	}

	cfgDir := getEnv("CONFIG_DIR", common.DEFAULT_CONFIG_DIR)

	// Load configuration
	cfg, err := common.LoadConfig(cfgDir)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect to the central database
	database, err := db.Connect(cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Initialize Redis client
	redisClient, err := storage.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		slog.Error("Failed to initialize Redis client", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Initialize JWT manager
	jwtManager, err := auth.NewJWTManagerFromEnv(cfg.JWTIssuer, cfg.JWTExpiryHours)
	if err != nil {
		slog.Error("Failed to initialize JWT manager", "error", err)
		os.Exit(1)
	}

	monitoring.InitMetrics()

	deps := sections.NewDependencies(cfg, database, redisClient)

	// Initialize Gin router
	r := gin.Default()

	env := getEnv("APP_ENV", "production")
	trustedProxies := getEnv("TRUSTED_PROXIES", "")

	if env != "development" && trustedProxies == "" {
		slog.Error("In production mode, TRUSTED_PROXIES must be set")
		os.Exit(1)
	} else if trustedProxies != "" {
		slog.Info("Setting trusted proxies", "proxies", trustedProxies)
		proxies := strings.Split(trustedProxies, ",")
		if err := r.SetTrustedProxies(proxies); err != nil {
			slog.Error("Failed to set trusted proxies", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("No trusted proxies set (TRUSTED_PROXIES not defined)")
	}

	// Configure CORS: the frontend may live on any tenant domain, so origins
	// are echoed rather than pinned.
	corsConfig := cors.DefaultConfig()
	if corsOrigins := getEnv("CORS_ORIGINS", ""); corsOrigins != "" {
		slog.Info("CORS origins set from CORS_ORIGINS")
		corsConfig.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "X-Forwarded-Host", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	authHandler := auth.NewHandler(deps, jwtManager)
	auth.RegisterRoutes(r, authHandler)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	slog.Info("Server starting", "addr", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
