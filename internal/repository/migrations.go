package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations применяются по порядку; каждая идемпотентна
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id            TEXT PRIMARY KEY,
        username      TEXT NOT NULL,
        email         TEXT NOT NULL,
        password_hash TEXT NOT NULL,
        created_at    TIMESTAMPTZ NOT NULL,
        updated_at    TIMESTAMPTZ NOT NULL
    )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS lists (
        id         TEXT PRIMARY KEY,
        seq        BIGSERIAL,
        name       TEXT NOT NULL,
        user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS lists_user_created_idx ON lists (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS tasks (
        id          TEXT PRIMARY KEY,
        seq         BIGSERIAL,
        title       TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        starred     BOOLEAN NOT NULL DEFAULT FALSE,
        remind_at   TIMESTAMPTZ,
        list_id     TEXT NOT NULL REFERENCES lists (id) ON DELETE CASCADE,
        user_id     TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
        created_at  TIMESTAMPTZ NOT NULL,
        updated_at  TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS tasks_user_list_created_idx ON tasks (user_id, list_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS tasks_user_starred_idx ON tasks (user_id) WHERE starred`,
}

// Migrate создаёт схему, если её ещё нет
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
