package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"vlogapp/api/internal/ids"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS password_reset_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT UNIQUE NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		used BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vlogs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		video_url TEXT NOT NULL,
		thumbnail_url TEXT NOT NULL DEFAULT '',
		category_id TEXT REFERENCES categories(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS vlog_comments (
		id TEXT PRIMARY KEY,
		vlog_id TEXT NOT NULL REFERENCES vlogs(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS vlog_likes (
		vlog_id TEXT NOT NULL REFERENCES vlogs(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (vlog_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_follows (
		follower_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		following_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (follower_id, following_id)
	)`,
}

// Columns added after the first users schema shipped. Existing databases get
// them via additive migration instead of a failing CREATE.
var additiveColumns = []struct {
	table      string
	column     string
	definition string
}{
	{"users", "status", "TEXT NOT NULL DEFAULT 'active'"},
	{"users", "is_active", "BOOLEAN NOT NULL DEFAULT FALSE"},
}

// EnsureSchema creates missing tables and columns. Safe to run on every
// startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	for _, col := range additiveColumns {
		exists, err := columnExists(ctx, pool, col.table, col.column)
		if err != nil {
			return fmt.Errorf("inspect %s.%s: %w", col.table, col.column, err)
		}
		if exists {
			continue
		}
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", col.table, col.column, col.definition)
		if _, err := pool.Exec(ctx, alter); err != nil {
			return fmt.Errorf("add column %s.%s: %w", col.table, col.column, err)
		}
	}

	return seedCategories(ctx, pool)
}

// DefaultCategories match what the SPA offers in its upload form.
var DefaultCategories = []string{"Travel", "Food", "Lifestyle", "Tech", "Music"}

func seedCategories(ctx context.Context, pool *pgxpool.Pool) error {
	const query = `
		INSERT INTO categories (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`
	for _, name := range DefaultCategories {
		if _, err := pool.Exec(ctx, query, ids.New(), name); err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}
	return nil
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, table, column string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = $1 AND column_name = $2
		)
	`
	var exists bool
	if err := pool.QueryRow(ctx, query, table, column).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
