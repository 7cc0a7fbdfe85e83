package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	BatchSize int
	// BatchDelay spaces the dish batches; the downstream AI and
	// storage calls are rate-sensitive.
	BatchDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		BatchSize:  5,
		BatchDelay: time.Second,
	}
}

// Pipeline turns one uploaded file into a persisted menu tree in
// three sequential phases: scan, save sections, save dishes in
// batches. Every failure is fatal; a missing early dish batch would
// leave the menu structurally broken, so nothing is retried here.
type Pipeline struct {
	ops    Operations
	logger *zap.Logger
	cfg    Config
}

func NewPipeline(ops Operations, logger *zap.Logger, cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultConfig().BatchDelay
	}
	return &Pipeline{
		ops:    ops,
		logger: logger.Named("ingest"),
		cfg:    cfg,
	}
}

// Run executes all three phases and returns the new menu id. The
// caller is expected to re-fetch the tree afterwards; the pipeline is
// write-only.
func (p *Pipeline) Run(ctx context.Context, req ScanRequest, report ProgressFunc) (string, error) {
	if report == nil {
		report = func(Progress) {}
	}

	fail := func(phase Stage, err error) error {
		report(Progress{Stage: StageFailed, Phase: phase, Message: err.Error()})
		return fmt.Errorf("%s: %w", phase, err)
	}

	// Phase 1: scan. The upload is expensive and not idempotent-safe
	// to repeat blindly, so no retry here.
	report(Progress{Stage: StageScanning})
	menuID, err := p.ops.Scan(ctx, req)
	if err != nil {
		return "", fail(StageScanning, err)
	}

	// Phase 2: sections, one call.
	report(Progress{Stage: StageSavingSections})
	sections, err := p.ops.SaveSections(ctx, menuID)
	if err != nil {
		return "", fail(StageSavingSections, err)
	}

	// Phase 3: dishes, batched with a fixed pause between batches.
	startIndex := 0
	total := -1
	for {
		shown := total
		if shown < 0 {
			shown = 0
		}
		report(Progress{
			Stage:    StageSavingDishes,
			Sections: sections,
			Done:     startIndex,
			Total:    shown,
		})

		res, err := p.ops.SaveDishBatch(ctx, menuID, startIndex, p.cfg.BatchSize)
		if err != nil {
			return "", fail(StageSavingDishes, err)
		}

		total = res.Total
		startIndex = res.NextIndex

		if startIndex >= total {
			break
		}

		if err := sleepCtx(ctx, p.cfg.BatchDelay); err != nil {
			return "", fail(StageSavingDishes, err)
		}
	}

	p.logger.Info("ingestion complete",
		zap.String("menu_id", menuID),
		zap.Int("sections", sections),
		zap.Int("dishes", total),
	)

	return menuID, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
