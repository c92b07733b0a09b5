package database

import (
	"database/sql"
	"errors"
	"fmt"

	"mod-helper/model"

	"github.com/jmoiron/sqlx"
)

// AddPunishmentRecord appends a new punishment record to a guild's history.
func AddPunishmentRecord(db *sqlx.DB, record *model.PunishmentRecord) error {
	query := `INSERT INTO punishments (
	              action_id, guild_id, kind,
	              user_id, user_tag, user_name,
	              moderator_id, moderator_tag, moderator_name,
	              issued_at, duration, expires_at, reason, evidence
	          ) VALUES (
	              :action_id, :guild_id, :kind,
	              :user_id, :user_tag, :user_name,
	              :moderator_id, :moderator_tag, :moderator_name,
	              :issued_at, :duration, :expires_at, :reason, :evidence
	          )`

	_, err := db.NamedExec(query, record)
	if err != nil {
		return fmt.Errorf("failed to insert punishment record: %w", err)
	}
	return nil
}

// FindActivePunishment returns the most recent unresolved punishment of kind
// for a user in a guild, or nil if none exists.
func FindActivePunishment(db *sqlx.DB, guildID, userID string, kind model.PunishmentKind) (*model.PunishmentRecord, error) {
	var record model.PunishmentRecord
	query := `SELECT * FROM punishments
	          WHERE guild_id = ? AND user_id = ? AND kind = ? AND resolved_id IS NULL
	          ORDER BY issued_at DESC, rowid DESC LIMIT 1`
	err := db.Get(&record, query, guildID, userID, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active %s for user %s: %w", kind, userID, err)
	}
	return &record, nil
}

// MarkResolved sets a punishment's resolution fields. The update is
// conditional on the record still being unresolved, so a concurrent manual
// reversal and a scheduler sweep can both attempt it and exactly one wins.
// Returns false if the record was already resolved (or does not exist).
func MarkResolved(db *sqlx.DB, actionID string, resolution *model.ResolutionRecord) (bool, error) {
	query := `UPDATE punishments SET
	              resolved_id = ?,
	              resolved_mod_id = ?, resolved_mod_tag = ?, resolved_mod_name = ?,
	              resolved_reason = ?, resolved_at = ?
	          WHERE action_id = ? AND resolved_id IS NULL`
	result, err := db.Exec(query,
		resolution.ActionID,
		resolution.Moderator.ID, resolution.Moderator.Tag, resolution.Moderator.Name,
		resolution.Reason, resolution.IssuedAt,
		actionID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to resolve punishment %s: %w", actionID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for punishment %s: %w", actionID, err)
	}
	return rows == 1, nil
}

// GetPunishmentByActionID retrieves a punishment record by its moderation ID.
// The lookup is global: moderation IDs are unique across guilds and the
// caller decides whether a record from another guild should be redacted.
func GetPunishmentByActionID(db *sqlx.DB, actionID string) (*model.PunishmentRecord, error) {
	var record model.PunishmentRecord
	err := db.Get(&record, `SELECT * FROM punishments WHERE action_id = ?`, actionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get punishment record %s: %w", actionID, err)
	}
	return &record, nil
}

// ListGuildsWithExpired returns the guilds that have at least one unresolved
// punishment whose finite expiry is at or before now.
func ListGuildsWithExpired(db *sqlx.DB, now int64) ([]string, error) {
	var guildIDs []string
	query := `SELECT DISTINCT guild_id FROM punishments
	          WHERE resolved_id IS NULL AND expires_at >= 0 AND expires_at <= ?
	          ORDER BY guild_id`
	err := db.Select(&guildIDs, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds with expired punishments: %w", err)
	}
	return guildIDs, nil
}

// ListExpiredPunishments returns a guild's unresolved punishments whose
// finite expiry is at or before now, in issuance order.
func ListExpiredPunishments(db *sqlx.DB, guildID string, now int64) ([]model.PunishmentRecord, error) {
	var records []model.PunishmentRecord
	query := `SELECT * FROM punishments
	          WHERE guild_id = ? AND resolved_id IS NULL AND expires_at >= 0 AND expires_at <= ?
	          ORDER BY issued_at, rowid`
	err := db.Select(&records, query, guildID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired punishments for guild %s: %w", guildID, err)
	}
	return records, nil
}

// GetPunishmentsByUserID retrieves a user's punishment history in a guild,
// in issuance order.
func GetPunishmentsByUserID(db *sqlx.DB, guildID, userID string) ([]model.PunishmentRecord, error) {
	var records []model.PunishmentRecord
	query := `SELECT * FROM punishments WHERE guild_id = ? AND user_id = ? ORDER BY issued_at, rowid`
	err := db.Select(&records, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get punishment records for user %s: %w", userID, err)
	}
	return records, nil
}
