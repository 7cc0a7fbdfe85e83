package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
)

type Config struct {
	BatchSize int
	// BatchDelay is observed between successfully completed batches.
	BatchDelay time.Duration
	// MaxAttempts is the per-batch attempt budget before the batch is
	// skipped.
	MaxAttempts uint
	// BackoffStep grows linearly: 1x after the first failure, 2x
	// after the second, and so on.
	BackoffStep time.Duration
}

func DefaultConfig() Config {
	return Config{
		BatchSize:   5,
		BatchDelay:  2 * time.Second,
		MaxAttempts: 3,
		BackoffStep: 3 * time.Second,
	}
}

// ProgressFunc reports dishes processed so far against the
// server-reported total.
type ProgressFunc func(done, total int)

type Summary struct {
	TotalItems     int
	Tagged         int
	SkippedBatches int
}

// Pipeline walks a menu's dishes in batches and asks the AI service
// to backfill tags. A batch that exhausts its attempts is skipped and
// the cursor still advances: missing tags are a cosmetic degradation,
// a stuck batch must not halt the whole menu.
type Pipeline struct {
	ops    Operations
	logger *zap.Logger
	cfg    Config
}

func NewPipeline(ops Operations, logger *zap.Logger, cfg Config) *Pipeline {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = def.BatchDelay
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BackoffStep <= 0 {
		cfg.BackoffStep = def.BackoffStep
	}
	return &Pipeline{
		ops:    ops,
		logger: logger.Named("enrich"),
		cfg:    cfg,
	}
}

// Run processes the whole menu. The dish total is not known until the
// first successful batch response; if that first batch exhausts its
// attempts the run aborts, since the loop cannot bound itself blind.
func (p *Pipeline) Run(ctx context.Context, menuID string, report ProgressFunc) (Summary, error) {
	if report == nil {
		report = func(int, int) {}
	}

	var sum Summary
	startIndex := 0
	total := -1

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		var res BatchResult
		err := retry.Do(
			func() error {
				r, err := p.ops.EnrichBatch(ctx, menuID, startIndex, p.cfg.BatchSize)
				if err != nil {
					return err
				}
				res = r
				return nil
			},
			retry.Attempts(p.cfg.MaxAttempts),
			retry.Context(ctx),
			retry.LastErrorOnly(true),
			retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
				return time.Duration(n+1) * p.cfg.BackoffStep
			}),
			retry.OnRetry(func(n uint, err error) {
				p.logger.Warn("retrying enrichment batch",
					zap.String("menu_id", menuID),
					zap.Int("start_index", startIndex),
					zap.Uint("attempt", n+1),
					zap.Error(err),
				)
			}),
		)

		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			if total < 0 {
				return sum, fmt.Errorf("enrichment aborted, dish total unknown: %w", err)
			}

			p.logger.Warn("skipping enrichment batch after exhausted attempts",
				zap.String("menu_id", menuID),
				zap.Int("start_index", startIndex),
				zap.Error(err),
			)
			sum.SkippedBatches++
			startIndex += p.cfg.BatchSize

			if startIndex >= total {
				break
			}
			continue
		}

		total = res.TotalItems
		sum.TotalItems = total
		sum.Tagged += res.NextIndex - startIndex
		startIndex = res.NextIndex
		report(startIndex, total)

		if startIndex >= total {
			break
		}

		if err := sleepCtx(ctx, p.cfg.BatchDelay); err != nil {
			return sum, err
		}
	}

	p.logger.Info("enrichment complete",
		zap.String("menu_id", menuID),
		zap.Int("tagged", sum.Tagged),
		zap.Int("total", sum.TotalItems),
		zap.Int("skipped_batches", sum.SkippedBatches),
	)

	return sum, nil
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
