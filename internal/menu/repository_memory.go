package menu

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository mirrors the Postgres repository for tests. It
// keeps insertion order per menu/section the way seq columns do.
type InMemoryRepository struct {
	mu sync.Mutex

	menus map[string]*Menu

	sections     map[string]*Section
	sectionOrder map[string][]string // menuID -> section ids, insertion order

	dishes    map[string]*Dish
	dishOrder map[string][]string // sectionID -> dish ids, insertion order
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		menus:        make(map[string]*Menu),
		sections:     make(map[string]*Section),
		sectionOrder: make(map[string][]string),
		dishes:       make(map[string]*Dish),
		dishOrder:    make(map[string][]string),
	}
}

func (r *InMemoryRepository) CreateMenu(_ context.Context, m *Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now()

	cp := *m
	r.menus[m.ID] = &cp
	return nil
}

func (r *InMemoryRepository) GetMenu(_ context.Context, menuID string) (*Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.menus[menuID]
	if !ok {
		return nil, ErrMenuNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *InMemoryRepository) GetMenuBySlug(_ context.Context, slug string) (*Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.menus {
		if m.Slug == slug {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrMenuNotFound
}

func (r *InMemoryRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.menus {
		if m.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) LoadTree(_ context.Context, menuID string) ([]Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadTreeLocked(menuID), nil
}

func (r *InMemoryRepository) loadTreeLocked(menuID string) []Section {
	ids := r.sectionOrder[menuID]

	sections := make([]Section, 0, len(ids))
	for _, id := range ids {
		s := *r.sections[id]
		s.Dishes = nil
		for _, dishID := range r.dishOrder[id] {
			d := *r.dishes[dishID]
			s.Dishes = append(s.Dishes, d)
		}
		sections = append(sections, s)
	}

	// insertion order breaks display_order ties, same as seq
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].DisplayOrder < sections[j].DisplayOrder
	})

	return sections
}

func (r *InMemoryRepository) InsertSection(_ context.Context, s *Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	cp := *s
	cp.Dishes = nil
	r.sections[s.ID] = &cp
	r.sectionOrder[s.MenuID] = append(r.sectionOrder[s.MenuID], s.ID)
	return nil
}

func (r *InMemoryRepository) UpdateSection(_ context.Context, sectionID string, fields SectionFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sections[sectionID]
	if !ok {
		return errors.New("section not found")
	}
	if fields.Name != nil {
		s.Name = *fields.Name
	}
	if fields.DisplayOrder != nil {
		s.DisplayOrder = *fields.DisplayOrder
	}
	return nil
}

func (r *InMemoryRepository) DeleteSection(_ context.Context, sectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sections[sectionID]
	if !ok {
		return nil
	}

	// cascade, like the foreign key does
	for _, dishID := range r.dishOrder[sectionID] {
		delete(r.dishes, dishID)
	}
	delete(r.dishOrder, sectionID)
	delete(r.sections, sectionID)

	order := r.sectionOrder[s.MenuID]
	for i, id := range order {
		if id == sectionID {
			r.sectionOrder[s.MenuID] = append(order[:i], order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *InMemoryRepository) InsertDish(_ context.Context, d *Dish) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sections[d.SectionID]; !ok {
		return errors.New("section not found")
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	cp := *d
	cp.Allergens = NormalizeTags(d.Allergens)
	cp.DietaryTags = NormalizeTags(d.DietaryTags)
	r.dishes[d.ID] = &cp
	r.dishOrder[d.SectionID] = append(r.dishOrder[d.SectionID], d.ID)
	return nil
}

func (r *InMemoryRepository) UpdateDish(_ context.Context, dishID string, fields DishFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.dishes[dishID]
	if !ok {
		return errors.New("dish not found")
	}

	if fields.SectionID != nil && *fields.SectionID != d.SectionID {
		if _, ok := r.sections[*fields.SectionID]; !ok {
			return errors.New("section not found")
		}
		// move between per-section insertion lists
		order := r.dishOrder[d.SectionID]
		for i, id := range order {
			if id == dishID {
				r.dishOrder[d.SectionID] = append(order[:i], order[i+1:]...)
				break
			}
		}
		d.SectionID = *fields.SectionID
		r.dishOrder[d.SectionID] = append(r.dishOrder[d.SectionID], dishID)
	}
	if fields.Name != nil {
		d.Name = *fields.Name
	}
	if fields.Description != nil {
		d.Description = *fields.Description
	}
	if fields.PriceSet {
		d.Price = fields.Price
	}
	if fields.Allergens != nil {
		d.Allergens = NormalizeTags(fields.Allergens)
	}
	if fields.DietaryTags != nil {
		d.DietaryTags = NormalizeTags(fields.DietaryTags)
	}
	return nil
}

func (r *InMemoryRepository) DeleteDish(_ context.Context, dishID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.dishes[dishID]
	if !ok {
		return nil
	}

	order := r.dishOrder[d.SectionID]
	for i, id := range order {
		if id == dishID {
			r.dishOrder[d.SectionID] = append(order[:i], order[i+1:]...)
			break
		}
	}
	delete(r.dishes, dishID)
	return nil
}

func (r *InMemoryRepository) CountDishes(_ context.Context, menuID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, d := range r.dishes {
		if d.MenuID == menuID {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryRepository) ListDishes(_ context.Context, menuID string, offset, limit int) ([]Dish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var flat []Dish
	for _, s := range r.loadTreeLocked(menuID) {
		flat = append(flat, s.Dishes...)
	}

	if offset >= len(flat) {
		return nil, nil
	}
	end := offset + limit
	if end > len(flat) {
		end = len(flat)
	}
	return flat[offset:end], nil
}

func (r *InMemoryRepository) UpdateDishTags(_ context.Context, dishID string, allergens, dietaryTags []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.dishes[dishID]
	if !ok {
		return errors.New("dish not found")
	}
	d.Allergens = NormalizeTags(allergens)
	d.DietaryTags = NormalizeTags(dietaryTags)
	return nil
}
