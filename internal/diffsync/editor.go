// Package diffsync turns a full edited menu tree into the minimal set
// of per-row inserts, updates and deletes against the stored tree.
// Rows are matched by identifier, never by position, so reordering a
// list produces order updates rather than delete/insert churn.
package diffsync

import (
	"context"
	"fmt"

	"github.com/silentpacific/wtm-sub000/internal/menu"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the slice of the menu repository the editor writes through.
type Store interface {
	InsertSection(ctx context.Context, s *menu.Section) error
	UpdateSection(ctx context.Context, sectionID string, fields menu.SectionFields) error
	DeleteSection(ctx context.Context, sectionID string) error

	InsertDish(ctx context.Context, d *menu.Dish) error
	UpdateDish(ctx context.Context, dishID string, fields menu.DishFields) error
	DeleteDish(ctx context.Context, dishID string) error
}

type Editor struct {
	store  Store
	logger *zap.Logger
}

func NewEditor(store Store, logger *zap.Logger) *Editor {
	return &Editor{store: store, logger: logger}
}

// Apply diffs the edited tree against the original baseline and writes
// the difference: two passes, sections first so that new dishes always
// have a section row to reference. Rows in the baseline but absent
// from the edited tree are deleted; rows without an identifier (or
// with one the baseline does not know) are inserted; matched rows are
// updated only when a compared field actually changed.
//
// The returned tree is the edited tree with generated identifiers
// filled in, suitable as the next baseline.
func (e *Editor) Apply(
	ctx context.Context,
	menuID string,
	original, edited []menu.Section,
) ([]menu.Section, error) {
	origSections := make(map[string]menu.Section, len(original))
	origDishes := make(map[string]menu.Dish)
	for _, s := range original {
		origSections[s.ID] = s
		for _, d := range s.Dishes {
			origDishes[d.ID] = d
		}
	}

	if err := e.applySections(ctx, menuID, origSections, edited); err != nil {
		return nil, err
	}
	if err := e.applyDishes(ctx, menuID, origDishes, edited); err != nil {
		return nil, err
	}

	return edited, nil
}

func (e *Editor) applySections(
	ctx context.Context,
	menuID string,
	orig map[string]menu.Section,
	edited []menu.Section,
) error {
	seen := make(map[string]bool, len(edited))

	for i := range edited {
		sec := &edited[i]
		before, exists := orig[sec.ID]
		if sec.ID == "" || !exists {
			if sec.ID == "" {
				sec.ID = uuid.New().String()
			}
			sec.MenuID = menuID
			if err := e.store.InsertSection(ctx, sec); err != nil {
				return fmt.Errorf("insert section %q: %w", sec.Name, err)
			}
			seen[sec.ID] = true
			continue
		}
		seen[sec.ID] = true

		var fields menu.SectionFields
		if sec.Name != before.Name {
			fields.Name = &sec.Name
		}
		if sec.DisplayOrder != before.DisplayOrder {
			fields.DisplayOrder = &sec.DisplayOrder
		}
		if fields.Empty() {
			continue
		}
		if err := e.store.UpdateSection(ctx, sec.ID, fields); err != nil {
			return fmt.Errorf("update section %s: %w", sec.ID, err)
		}
	}

	for id := range orig {
		if seen[id] {
			continue
		}
		// Cascades to the section's dishes in storage, so the dish
		// pass never sees them.
		if err := e.store.DeleteSection(ctx, id); err != nil {
			return fmt.Errorf("delete section %s: %w", id, err)
		}
	}

	return nil
}

func (e *Editor) applyDishes(
	ctx context.Context,
	menuID string,
	orig map[string]menu.Dish,
	edited []menu.Section,
) error {
	seen := make(map[string]bool, len(orig))
	cascaded := make(map[string]bool)
	editedSections := make(map[string]bool, len(edited))
	for _, s := range edited {
		editedSections[s.ID] = true
	}
	for _, d := range orig {
		if !editedSections[d.SectionID] {
			cascaded[d.ID] = true
		}
	}

	for i := range edited {
		sec := &edited[i]
		for j := range sec.Dishes {
			dish := &sec.Dishes[j]
			before, exists := orig[dish.ID]
			// A dish whose original section was deleted is gone from
			// storage via the cascade; if the editor moved it into a
			// surviving section it has to come back as an insert.
			if exists && cascaded[dish.ID] {
				exists = false
			}
			if dish.ID == "" || !exists {
				if dish.ID == "" {
					dish.ID = uuid.New().String()
				}
				dish.SectionID = sec.ID
				dish.MenuID = menuID
				dish.Allergens = menu.NormalizeTags(dish.Allergens)
				dish.DietaryTags = menu.NormalizeTags(dish.DietaryTags)
				if err := e.store.InsertDish(ctx, dish); err != nil {
					return fmt.Errorf("insert dish %q: %w", dish.Name, err)
				}
				seen[dish.ID] = true
				continue
			}
			seen[dish.ID] = true

			var fields menu.DishFields
			if sec.ID != before.SectionID {
				fields.SectionID = &sec.ID
			}
			dish.SectionID = sec.ID
			if dish.Name != before.Name {
				fields.Name = &dish.Name
			}
			if dish.Description != before.Description {
				fields.Description = &dish.Description
			}
			if !priceEqual(dish.Price, before.Price) {
				fields.Price = dish.Price
				fields.PriceSet = true
			}
			if !menu.TagsEqual(dish.Allergens, before.Allergens) {
				fields.Allergens = menu.NormalizeTags(dish.Allergens)
				if fields.Allergens == nil {
					fields.Allergens = []string{}
				}
			}
			if !menu.TagsEqual(dish.DietaryTags, before.DietaryTags) {
				fields.DietaryTags = menu.NormalizeTags(dish.DietaryTags)
				if fields.DietaryTags == nil {
					fields.DietaryTags = []string{}
				}
			}
			if fields.Empty() {
				continue
			}
			if err := e.store.UpdateDish(ctx, dish.ID, fields); err != nil {
				return fmt.Errorf("update dish %s: %w", dish.ID, err)
			}
		}
	}

	for id, d := range orig {
		if seen[id] || cascaded[id] {
			continue
		}
		e.logger.Debug("removing dish", zap.String("dish_id", id), zap.String("name", d.Name))
		if err := e.store.DeleteDish(ctx, id); err != nil {
			return fmt.Errorf("delete dish %s: %w", id, err)
		}
	}

	return nil
}

func priceEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
