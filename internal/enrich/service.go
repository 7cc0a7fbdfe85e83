package enrich

import (
	"context"
	"fmt"

	"github.com/silentpacific/wtm-sub000/internal/ai"
	"github.com/silentpacific/wtm-sub000/internal/menu"

	"go.uber.org/zap"
)

type BatchResult struct {
	TotalItems int `json:"total_items"`
	NextIndex  int `json:"next_index"`
}

// Operations is the enrichment collaborator call the pipeline drives.
type Operations interface {
	EnrichBatch(ctx context.Context, menuID string, startIndex, batchSize int) (BatchResult, error)
}

// Service backfills allergen/dietary tags onto persisted dishes. It
// never creates or deletes rows and never touches any other field.
type Service struct {
	repo   menu.Repository
	ai     ai.Client
	logger *zap.Logger
}

func NewService(repo menu.Repository, client ai.Client, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		ai:     client,
		logger: logger.Named("enrich"),
	}
}

func (s *Service) EnrichBatch(ctx context.Context, menuID string, startIndex, batchSize int) (BatchResult, error) {
	total, err := s.repo.CountDishes(ctx, menuID)
	if err != nil {
		return BatchResult{}, fmt.Errorf("count dishes: %w", err)
	}

	dishes, err := s.repo.ListDishes(ctx, menuID, startIndex, batchSize)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list dishes: %w", err)
	}
	if len(dishes) == 0 {
		return BatchResult{TotalItems: total, NextIndex: startIndex}, nil
	}

	refs := make([]ai.DishRef, len(dishes))
	for i, d := range dishes {
		refs[i] = ai.DishRef{Name: d.Name, Description: d.Description}
	}

	tags, err := s.ai.TagDishes(ctx, refs)
	if err != nil {
		return BatchResult{}, fmt.Errorf("ai tagging: %w", err)
	}
	if len(tags) != len(refs) {
		return BatchResult{}, fmt.Errorf("ai tagging: got %d results for %d dishes", len(tags), len(refs))
	}

	for i, d := range dishes {
		err := s.repo.UpdateDishTags(ctx, d.ID, tags[i].Allergens, tags[i].DietaryTags)
		if err != nil {
			return BatchResult{}, fmt.Errorf("update tags for %q: %w", d.Name, err)
		}
	}

	return BatchResult{
		TotalItems: total,
		NextIndex:  startIndex + len(dishes),
	}, nil
}
