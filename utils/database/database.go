package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the moderation database and ensures all tables exist.
// Every mutation in this package is a single statement or a single
// transaction, so concurrent writers to different fields of one guild's
// records never lose data. The schema only evolves additively; the tables
// hold long-lived operational history.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to moderation database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS tenants (
        guild_id TEXT PRIMARY KEY,
        reset_day INTEGER NOT NULL DEFAULT 0,
        reset_minute INTEGER NOT NULL DEFAULT 0
    );

    CREATE TABLE IF NOT EXISTS punishments (
        action_id TEXT PRIMARY KEY,
        guild_id TEXT NOT NULL,
        kind TEXT NOT NULL,
        user_id TEXT NOT NULL,
        user_tag TEXT NOT NULL,
        user_name TEXT NOT NULL,
        moderator_id TEXT NOT NULL,
        moderator_tag TEXT NOT NULL,
        moderator_name TEXT NOT NULL,
        issued_at INTEGER NOT NULL,
        duration INTEGER NOT NULL DEFAULT -1,
        expires_at INTEGER NOT NULL DEFAULT -1,
        reason TEXT NOT NULL,
        evidence TEXT NOT NULL DEFAULT '[]',
        resolved_id TEXT,
        resolved_mod_id TEXT,
        resolved_mod_tag TEXT,
        resolved_mod_name TEXT,
        resolved_reason TEXT,
        resolved_at INTEGER
    );
    CREATE INDEX IF NOT EXISTS idx_punishments_guild_user
        ON punishments (guild_id, user_id);
    CREATE INDEX IF NOT EXISTS idx_punishments_open_expiry
        ON punishments (expires_at) WHERE resolved_id IS NULL;

    CREATE TABLE IF NOT EXISTS quota_configs (
        guild_id TEXT NOT NULL,
        role_id TEXT NOT NULL,
        channel_id TEXT NOT NULL DEFAULT '',
        points_needed INTEGER NOT NULL,
        last_reset INTEGER NOT NULL,
        PRIMARY KEY (guild_id, role_id)
    );

    CREATE TABLE IF NOT EXISTS quota_rules (
        guild_id TEXT NOT NULL,
        role_id TEXT NOT NULL,
        activity TEXT NOT NULL,
        variant TEXT NOT NULL DEFAULT '',
        points INTEGER NOT NULL,
        PRIMARY KEY (guild_id, role_id, activity, variant)
    );

    CREATE TABLE IF NOT EXISTS quota_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT NOT NULL,
        role_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        user_tag TEXT NOT NULL,
        activity TEXT NOT NULL,
        variant TEXT NOT NULL DEFAULT '',
        points INTEGER NOT NULL,
        logged_at INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_quota_log_guild_role
        ON quota_log (guild_id, role_id);`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create moderation tables: %w", err)
	}

	return db, nil
}
