package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMenuNotFound = errors.New("menu not found")

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// MENUS
// --------------------------------------------------

func (r *PostgresRepository) CreateMenu(ctx context.Context, m *Menu) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO menus (id, restaurant_id, name, slug)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, m.ID, m.RestaurantID, m.Name, m.Slug).Scan(&m.CreatedAt)
}

func (r *PostgresRepository) GetMenu(ctx context.Context, menuID string) (*Menu, error) {
	return r.scanMenu(r.db.QueryRow(ctx, `
		SELECT id, restaurant_id, name, slug, created_at
		FROM menus
		WHERE id = $1
	`, menuID))
}

func (r *PostgresRepository) GetMenuBySlug(ctx context.Context, slug string) (*Menu, error) {
	return r.scanMenu(r.db.QueryRow(ctx, `
		SELECT id, restaurant_id, name, slug, created_at
		FROM menus
		WHERE slug = $1
	`, slug))
}

func (r *PostgresRepository) scanMenu(row pgx.Row) (*Menu, error) {
	var m Menu
	err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Slug, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM menus WHERE slug = $1)
	`, slug).Scan(&exists)
	return exists, err
}

// --------------------------------------------------
// TREE LOAD
// display_order sorts sections; seq keeps ties and dish order stable
// --------------------------------------------------

func (r *PostgresRepository) LoadTree(ctx context.Context, menuID string) ([]Section, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, menu_id, name, display_order
		FROM menu_sections
		WHERE menu_id = $1
		ORDER BY display_order, seq
	`, menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []Section
	index := make(map[string]int)

	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.MenuID, &s.Name, &s.DisplayOrder); err != nil {
			return nil, err
		}
		index[s.ID] = len(sections)
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dishRows, err := r.db.Query(ctx, `
		SELECT i.id, i.section_id, i.menu_id, i.name, i.description, i.price,
		       i.allergens, i.dietary_tags
		FROM menu_items i
		JOIN menu_sections s ON s.id = i.section_id
		WHERE i.menu_id = $1
		ORDER BY s.display_order, s.seq, i.seq
	`, menuID)
	if err != nil {
		return nil, err
	}
	defer dishRows.Close()

	for dishRows.Next() {
		var d Dish
		if err := dishRows.Scan(
			&d.ID, &d.SectionID, &d.MenuID, &d.Name, &d.Description,
			&d.Price, &d.Allergens, &d.DietaryTags,
		); err != nil {
			return nil, err
		}
		if i, ok := index[d.SectionID]; ok {
			sections[i].Dishes = append(sections[i].Dishes, d)
		}
	}

	return sections, dishRows.Err()
}

// --------------------------------------------------
// SECTION PRIMITIVES
// --------------------------------------------------

func (r *PostgresRepository) InsertSection(ctx context.Context, s *Section) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO menu_sections (id, menu_id, name, display_order)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.MenuID, s.Name, s.DisplayOrder)
	return err
}

func (r *PostgresRepository) UpdateSection(ctx context.Context, sectionID string, fields SectionFields) error {
	if fields.Empty() {
		return nil
	}

	set := make([]string, 0, 2)
	args := []interface{}{sectionID}

	if fields.Name != nil {
		args = append(args, *fields.Name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if fields.DisplayOrder != nil {
		args = append(args, *fields.DisplayOrder)
		set = append(set, fmt.Sprintf("display_order = $%d", len(args)))
	}

	query := fmt.Sprintf(
		"UPDATE menu_sections SET %s WHERE id = $1",
		strings.Join(set, ", "),
	)
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("section not found")
	}
	return nil
}

func (r *PostgresRepository) DeleteSection(ctx context.Context, sectionID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM menu_sections WHERE id = $1
	`, sectionID)
	return err
}

// --------------------------------------------------
// DISH PRIMITIVES
// --------------------------------------------------

// tagColumn prepares a tag slice for a TEXT[] NOT NULL column. A nil
// normalized set must go out as '{}': pgx encodes a nil []string as
// SQL NULL, which the schema rejects.
func tagColumn(tags []string) []string {
	if normalized := NormalizeTags(tags); normalized != nil {
		return normalized
	}
	return []string{}
}

func (r *PostgresRepository) InsertDish(ctx context.Context, d *Dish) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO menu_items (
			id, section_id, menu_id, name, description, price,
			allergens, dietary_tags
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		d.ID, d.SectionID, d.MenuID, d.Name, d.Description, d.Price,
		tagColumn(d.Allergens), tagColumn(d.DietaryTags),
	)
	return err
}

func (r *PostgresRepository) UpdateDish(ctx context.Context, dishID string, fields DishFields) error {
	if fields.Empty() {
		return nil
	}

	set := make([]string, 0, 6)
	args := []interface{}{dishID}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.SectionID != nil {
		add("section_id", *fields.SectionID)
	}
	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.Description != nil {
		add("description", *fields.Description)
	}
	if fields.PriceSet {
		add("price", fields.Price)
	}
	if fields.Allergens != nil {
		add("allergens", tagColumn(fields.Allergens))
	}
	if fields.DietaryTags != nil {
		add("dietary_tags", tagColumn(fields.DietaryTags))
	}

	query := fmt.Sprintf(
		"UPDATE menu_items SET %s WHERE id = $1",
		strings.Join(set, ", "),
	)
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("dish not found")
	}
	return nil
}

func (r *PostgresRepository) DeleteDish(ctx context.Context, dishID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM menu_items WHERE id = $1
	`, dishID)
	return err
}

// --------------------------------------------------
// ENRICHMENT BATCH ACCESS
// --------------------------------------------------

func (r *PostgresRepository) CountDishes(ctx context.Context, menuID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM menu_items WHERE menu_id = $1
	`, menuID).Scan(&count)
	return count, err
}

func (r *PostgresRepository) ListDishes(ctx context.Context, menuID string, offset, limit int) ([]Dish, error) {
	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.section_id, i.menu_id, i.name, i.description, i.price,
		       i.allergens, i.dietary_tags
		FROM menu_items i
		JOIN menu_sections s ON s.id = i.section_id
		WHERE i.menu_id = $1
		ORDER BY s.display_order, s.seq, i.seq
		OFFSET $2 LIMIT $3
	`, menuID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dishes []Dish
	for rows.Next() {
		var d Dish
		if err := rows.Scan(
			&d.ID, &d.SectionID, &d.MenuID, &d.Name, &d.Description,
			&d.Price, &d.Allergens, &d.DietaryTags,
		); err != nil {
			return nil, err
		}
		dishes = append(dishes, d)
	}

	return dishes, rows.Err()
}

func (r *PostgresRepository) UpdateDishTags(ctx context.Context, dishID string, allergens, dietaryTags []string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE menu_items
		SET allergens = $1,
		    dietary_tags = $2
		WHERE id = $3
	`, tagColumn(allergens), tagColumn(dietaryTags), dishID)
	return err
}
