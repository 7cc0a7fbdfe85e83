package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/silentpacific/wtm-sub000/internal/enrich"

	"go.uber.org/zap"
)

// FileStore is the slice of object storage the worker needs.
type FileStore interface {
	Download(ctx context.Context, key string) (data []byte, contentType string, err error)
}

// Worker polls for UPLOADED scan jobs and runs the ingestion pipeline
// followed by tag enrichment. One job at a time; a failed job is
// marked FAILED and never blocks the loop.
type Worker struct {
	jobs     JobRepository
	files    FileStore
	ingest   *Pipeline
	enrich   *enrich.Pipeline
	logger   *zap.Logger
	interval time.Duration
}

func NewWorker(
	jobs JobRepository,
	files FileStore,
	ingestPipeline *Pipeline,
	enrichPipeline *enrich.Pipeline,
	logger *zap.Logger,
	interval time.Duration,
) *Worker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Worker{
		jobs:     jobs,
		files:    files,
		ingest:   ingestPipeline,
		enrich:   enrichPipeline,
		logger:   logger.Named("scan-worker"),
		interval: interval,
	}
}

// Run polls until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("scan worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("scan worker stopped")
			return
		case <-ticker.C:
			if err := w.ProcessOne(ctx); err != nil {
				w.logger.Error("scan worker error", zap.Error(err))
			}
		}
	}
}

// ProcessOne claims and fully processes a single pending job. No
// pending jobs is not an error.
func (w *Worker) ProcessOne(ctx context.Context) error {
	job, err := w.jobs.ClaimNext(ctx)
	if err != nil {
		if errors.Is(err, ErrNoJob) {
			return nil
		}
		return err
	}

	w.logger.Info("processing scan job",
		zap.String("job_id", job.ID),
		zap.String("restaurant_id", job.RestaurantID),
	)

	data, contentType, err := w.files.Download(ctx, job.ObjectKey)
	if err != nil {
		_ = w.jobs.MarkFailed(ctx, job.ID, StageScanning, "fetch upload: "+err.Error())
		return nil
	}
	if contentType == "" {
		contentType = job.MimeType
	}

	req := ScanRequest{
		FileData:     data,
		FileName:     job.Filename,
		MimeType:     contentType,
		RestaurantID: job.RestaurantID,
	}

	menuID, err := w.ingest.Run(ctx, req, func(p Progress) {
		if p.Stage == StageFailed {
			_ = w.jobs.MarkFailed(ctx, job.ID, p.Phase, p.Message)
			return
		}
		_ = w.jobs.SetProgress(ctx, job.ID, p)
	})
	if err != nil {
		// job already marked FAILED by the progress callback
		return nil
	}

	_ = w.jobs.SetMenuID(ctx, job.ID, menuID)

	// Enrichment degrades gracefully: partial tagging still yields a
	// usable menu, so the job goes READY either way.
	_ = w.jobs.SetProgress(ctx, job.ID, Progress{Stage: StageTagging})

	summary, err := w.enrich.Run(ctx, menuID, func(done, total int) {
		_ = w.jobs.SetProgress(ctx, job.ID, Progress{
			Stage: StageTagging,
			Done:  done,
			Total: total,
		})
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.logger.Warn("enrichment incomplete",
			zap.String("menu_id", menuID),
			zap.Error(err),
		)
	} else if summary.SkippedBatches > 0 {
		w.logger.Warn("enrichment finished with skipped batches",
			zap.String("menu_id", menuID),
			zap.Int("skipped_batches", summary.SkippedBatches),
		)
	}

	return w.jobs.MarkReady(ctx, job.ID)
}
