package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/silentpacific/wtm-sub000/internal/ai"
	"github.com/silentpacific/wtm-sub000/internal/auth"
	"github.com/silentpacific/wtm-sub000/internal/config"
	"github.com/silentpacific/wtm-sub000/internal/db"
	"github.com/silentpacific/wtm-sub000/internal/diffsync"
	"github.com/silentpacific/wtm-sub000/internal/enrich"
	"github.com/silentpacific/wtm-sub000/internal/ingest"
	"github.com/silentpacific/wtm-sub000/internal/logger"
	"github.com/silentpacific/wtm-sub000/internal/menu"
	"github.com/silentpacific/wtm-sub000/internal/middleware"
	"github.com/silentpacific/wtm-sub000/internal/restaurant"
	"github.com/silentpacific/wtm-sub000/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── CONFIG ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	// ───────────────────────── DB ─────────────────────────
	pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pool.Close()

	// ───────────────────────── STORAGE ─────────────────────────
	r2, err := storage.NewR2Client(ctx, storage.R2Config{
		Endpoint:      cfg.R2Endpoint,
		AccessKey:     cfg.R2AccessKey,
		SecretKey:     cfg.R2SecretKey,
		Bucket:        cfg.R2Bucket,
		PublicBaseURL: cfg.R2PublicBaseURL,
	})
	if err != nil {
		zlog.Fatal("r2 init failed", zap.Error(err))
	}

	// ───────────────────────── AI ─────────────────────────
	gemini := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	extractions := ai.NewExtractionCache()

	// ───────────────────────── REPOS ─────────────────────────
	userRepo := auth.NewPostgresUserRepository(pool)
	restaurantRepo := restaurant.NewPostgresRepository(pool)
	menuRepo := menu.NewPostgresRepository(pool)
	jobRepo := ingest.NewPostgresJobRepository(pool)

	// ───────────────────────── SERVICES ─────────────────────────
	tokens := auth.NewTokens(cfg.JWTSecret)
	authService := auth.NewService(userRepo)
	restaurantService := restaurant.NewService(restaurantRepo)
	menuService := menu.NewService(menuRepo, cfg.PublicMenuBaseURL)
	editor := diffsync.NewEditor(menuRepo, zlog)

	ingestService := ingest.NewService(menuService, menuRepo, gemini, extractions, zlog)
	ingestPipeline := ingest.NewPipeline(ingestService, zlog, ingest.DefaultConfig())

	enrichService := enrich.NewService(menuRepo, gemini, zlog)
	enrichPipeline := enrich.NewPipeline(enrichService, zlog, enrich.DefaultConfig())

	// ───────────────────────── HANDLERS ─────────────────────────
	authHandler := auth.NewHandler(authService, tokens)
	restaurantHandler := restaurant.NewHandler(restaurantService)
	menuHandler := menu.NewHandler(menuService, restaurantService, editor)
	scanHandler := ingest.NewHandler(jobRepo, r2, restaurantService, zlog)

	// ───────────────────────── GIN ─────────────────────────
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ───────────────────────── AUTH ROUTES ─────────────────────────
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// ───────────────────────── RESTAURANT ROUTES ─────────────────────────
	restaurants := r.Group("/restaurants")
	restaurants.Use(
		middleware.AuthMiddleware(tokens),
		middleware.RequireRole(auth.RoleOwner),
	)
	{
		restaurants.POST("", restaurantHandler.CreateRestaurant)
		restaurants.GET("/me", restaurantHandler.ListMyRestaurants)

		restaurants.GET("/:restaurant_id/scan", scanHandler.Status)
		restaurants.POST("/:restaurant_id/scan/retry", scanHandler.Retry)
	}

	// ───────────────────────── MENU ROUTES ─────────────────────────
	menus := r.Group("/menus")
	menus.Use(middleware.AuthMiddleware(tokens))
	{
		menus.POST("/upload", scanHandler.Upload)

		menus.GET("/:menu_id/tree", menuHandler.GetTree)
		menus.PUT("/:menu_id/tree", menuHandler.SaveTree)
	}

	// ───────────────────────── PUBLIC ─────────────────────────
	r.GET("/m/:slug", menuHandler.PublicMenu)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ───────────────────────── SCAN WORKER ─────────────────────────
	worker := ingest.NewWorker(jobRepo, r2, ingestPipeline, enrichPipeline, zlog, 2*time.Second)
	go worker.Run(ctx)

	// ───────────────────────── START ─────────────────────────
	zlog.Info("api listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
