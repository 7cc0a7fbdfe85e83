// Standalone scan worker. The api binary runs an in-process worker as
// well; this one exists so scanning can be scaled independently of the
// HTTP tier.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/silentpacific/wtm-sub000/internal/ai"
	"github.com/silentpacific/wtm-sub000/internal/config"
	"github.com/silentpacific/wtm-sub000/internal/db"
	"github.com/silentpacific/wtm-sub000/internal/enrich"
	"github.com/silentpacific/wtm-sub000/internal/ingest"
	"github.com/silentpacific/wtm-sub000/internal/logger"
	"github.com/silentpacific/wtm-sub000/internal/menu"
	"github.com/silentpacific/wtm-sub000/internal/storage"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pool.Close()

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

	gemini := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	extractions := ai.NewExtractionCache()

	menuRepo := menu.NewPostgresRepository(pool)
	jobRepo := ingest.NewPostgresJobRepository(pool)

	menuService := menu.NewService(menuRepo, cfg.PublicMenuBaseURL)
	ingestService := ingest.NewService(menuService, menuRepo, gemini, extractions, zlog)
	ingestPipeline := ingest.NewPipeline(ingestService, zlog, ingest.DefaultConfig())

	enrichService := enrich.NewService(menuRepo, gemini, zlog)
	enrichPipeline := enrich.NewPipeline(enrichService, zlog, enrich.DefaultConfig())

	worker := ingest.NewWorker(jobRepo, r2, ingestPipeline, enrichPipeline, zlog, 2*time.Second)
	worker.Run(ctx)
}
