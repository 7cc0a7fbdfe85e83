package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/silentpacific/wtm-sub000/internal/ai"
	"github.com/silentpacific/wtm-sub000/internal/menu"

	"go.uber.org/zap"
)

// ScanRequest carries one uploaded menu file into the scan phase.
type ScanRequest struct {
	FileData     []byte
	FileName     string
	MimeType     string
	RestaurantID string
}

type DishBatchResult struct {
	Inserted  int `json:"inserted"`
	NextIndex int `json:"next_index"`
	Total     int `json:"total"`
}

// Operations are the three ingestion collaborator calls the pipeline
// drives. The Service below is the real implementation; tests use
// fakes.
type Operations interface {
	Scan(ctx context.Context, req ScanRequest) (menuID string, err error)
	SaveSections(ctx context.Context, menuID string) (int, error)
	SaveDishBatch(ctx context.Context, menuID string, startIndex, batchSize int) (DishBatchResult, error)
}

var ErrNoCachedExtraction = errors.New("no cached extraction for menu")

type Service struct {
	menus  *menu.Service
	repo   menu.Repository
	ai     ai.Client
	cache  *ai.ExtractionCache
	logger *zap.Logger
}

func NewService(
	menus *menu.Service,
	repo menu.Repository,
	client ai.Client,
	cache *ai.ExtractionCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		menus:  menus,
		repo:   repo,
		ai:     client,
		cache:  cache,
		logger: logger.Named("ingest"),
	}
}

// Scan sends the file to the AI service, creates the menu row and
// caches the extraction keyed by the new menu id.
func (s *Service) Scan(ctx context.Context, req ScanRequest) (string, error) {
	extracted, err := s.ai.ExtractMenu(ctx, req.FileData, req.MimeType)
	if err != nil {
		return "", fmt.Errorf("ai extraction: %w", err)
	}

	name := extracted.RestaurantName
	if name == "" {
		name = strings.TrimSuffix(req.FileName, filepath.Ext(req.FileName))
	}

	m, err := s.menus.CreateMenu(ctx, req.RestaurantID, name)
	if err != nil {
		return "", fmt.Errorf("create menu: %w", err)
	}

	s.cache.Put(m.ID, extracted)

	s.logger.Info("menu scanned",
		zap.String("menu_id", m.ID),
		zap.String("slug", m.Slug),
		zap.Int("sections", len(extracted.Sections)),
		zap.Int("dishes", extracted.DishCount()),
	)

	return m.ID, nil
}

// SaveSections materializes every section discovered by the scan and
// records their row ids for the dish batches.
func (s *Service) SaveSections(ctx context.Context, menuID string) (int, error) {
	entry, ok := s.cache.Get(menuID)
	if !ok {
		return 0, ErrNoCachedExtraction
	}

	ids := make([]string, len(entry.Menu.Sections))
	for i, es := range entry.Menu.Sections {
		section := &menu.Section{
			MenuID:       menuID,
			Name:         es.Name,
			DisplayOrder: i,
		}
		if err := s.repo.InsertSection(ctx, section); err != nil {
			return 0, fmt.Errorf("insert section %q: %w", es.Name, err)
		}
		ids[i] = section.ID
	}

	s.cache.SetSectionIDs(menuID, ids)
	return len(ids), nil
}

// SaveDishBatch inserts up to batchSize dishes starting at startIndex
// into their already-created sections.
func (s *Service) SaveDishBatch(ctx context.Context, menuID string, startIndex, batchSize int) (DishBatchResult, error) {
	entry, ok := s.cache.Get(menuID)
	if !ok {
		return DishBatchResult{}, ErrNoCachedExtraction
	}
	if len(entry.SectionIDs) != len(entry.Menu.Sections) {
		return DishBatchResult{}, errors.New("sections not persisted yet")
	}

	type flatDish struct {
		sectionIdx int
		dish       ai.ExtractedDish
	}
	var flat []flatDish
	for si, es := range entry.Menu.Sections {
		for _, d := range es.Dishes {
			flat = append(flat, flatDish{sectionIdx: si, dish: d})
		}
	}

	total := len(flat)
	end := startIndex + batchSize
	if end > total {
		end = total
	}

	inserted := 0
	for i := startIndex; i < end; i++ {
		fd := flat[i]
		d := &menu.Dish{
			SectionID:   entry.SectionIDs[fd.sectionIdx],
			MenuID:      menuID,
			Name:        fd.dish.Name,
			Description: fd.dish.Description,
			Price:       fd.dish.Price,
			Allergens:   menu.NormalizeTags(fd.dish.Allergens),
			DietaryTags: menu.NormalizeTags(fd.dish.DietaryTags),
		}
		if err := s.repo.InsertDish(ctx, d); err != nil {
			return DishBatchResult{}, fmt.Errorf("insert dish %q: %w", fd.dish.Name, err)
		}
		inserted++
	}

	next := startIndex + inserted
	if next >= total {
		// extraction fully persisted, nothing will read it again
		s.cache.Drop(menuID)
	}

	return DishBatchResult{
		Inserted:  inserted,
		NextIndex: next,
		Total:     total,
	}, nil
}
