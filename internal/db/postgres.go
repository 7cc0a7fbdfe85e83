package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("schema init failed: %w", err)
	}

	return pool, nil
}

// initSchema creates or updates the database schema
func initSchema(ctx context.Context, pool *pgxpool.Pool) error {

	// -------------------------------
	// USERS
	// -------------------------------
	usersSQL := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'OWNER',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := pool.Exec(ctx, usersSQL); err != nil {
		return err
	}

	// -------------------------------
	// RESTAURANTS
	// -------------------------------
	restaurantsSQL := `
		CREATE TABLE IF NOT EXISTS restaurants (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id),
			name VARCHAR(255) NOT NULL,
			city VARCHAR(255) NOT NULL,
			cuisine_type VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := pool.Exec(ctx, restaurantsSQL); err != nil {
		return err
	}

	// -------------------------------
	// MENUS (slug stays globally unique)
	// -------------------------------
	menusSQL := `
		CREATE TABLE IF NOT EXISTS menus (
			id UUID PRIMARY KEY,
			restaurant_id UUID NOT NULL REFERENCES restaurants(id),
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(255) UNIQUE NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := pool.Exec(ctx, menusSQL); err != nil {
		return err
	}

	// -------------------------------
	// MENU SECTIONS
	// -------------------------------
	sectionsSQL := `
		CREATE TABLE IF NOT EXISTS menu_sections (
			id UUID PRIMARY KEY,
			menu_id UUID NOT NULL REFERENCES menus(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			display_order INTEGER NOT NULL DEFAULT 0,
			seq BIGSERIAL
		)
	`
	if _, err := pool.Exec(ctx, sectionsSQL); err != nil {
		return err
	}

	// -------------------------------
	// MENU ITEMS
	// Deleting a section cascades to its dishes; diff-sync relies on
	// this instead of deleting dishes one by one.
	// -------------------------------
	itemsSQL := `
		CREATE TABLE IF NOT EXISTS menu_items (
			id UUID PRIMARY KEY,
			section_id UUID NOT NULL REFERENCES menu_sections(id) ON DELETE CASCADE,
			menu_id UUID NOT NULL REFERENCES menus(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(10,2) NULL,
			allergens TEXT[] NOT NULL DEFAULT '{}',
			dietary_tags TEXT[] NOT NULL DEFAULT '{}',
			seq BIGSERIAL
		)
	`
	if _, err := pool.Exec(ctx, itemsSQL); err != nil {
		return err
	}

	// -------------------------------
	// SCAN JOBS (upload -> ingest -> enrich status machine)
	// -------------------------------
	scanJobsSQL := `
		CREATE TABLE IF NOT EXISTS scan_jobs (
			id UUID PRIMARY KEY,
			restaurant_id UUID NOT NULL REFERENCES restaurants(id),
			menu_id UUID NULL,
			object_key VARCHAR(500) NOT NULL,
			original_filename VARCHAR(255) NOT NULL,
			mime_type VARCHAR(100) NOT NULL,
			stage VARCHAR(50) NOT NULL DEFAULT 'UPLOADED',
			dishes_done INTEGER NOT NULL DEFAULT 0,
			dishes_total INTEGER NOT NULL DEFAULT 0,
			error TEXT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := pool.Exec(ctx, scanJobsSQL); err != nil {
		return err
	}

	return nil
}
