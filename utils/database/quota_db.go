package database

import (
	"database/sql"
	"errors"
	"fmt"

	"mod-helper/model"

	"github.com/jmoiron/sqlx"
)

// GetQuotaConfig returns the quota config for a role, or nil if none exists.
func GetQuotaConfig(db *sqlx.DB, guildID, roleID string) (*model.QuotaConfig, error) {
	var cfg model.QuotaConfig
	err := db.Get(&cfg, `SELECT * FROM quota_configs WHERE guild_id = ? AND role_id = ?`, guildID, roleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quota config for role %s: %w", roleID, err)
	}
	return &cfg, nil
}

// ListQuotaConfigs returns all quota configs for a guild.
func ListQuotaConfigs(db *sqlx.DB, guildID string) ([]model.QuotaConfig, error) {
	var configs []model.QuotaConfig
	err := db.Select(&configs, `SELECT * FROM quota_configs WHERE guild_id = ? ORDER BY role_id`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quota configs for guild %s: %w", guildID, err)
	}
	return configs, nil
}

// CountQuotaConfigs returns the number of quota configs in a guild.
func CountQuotaConfigs(db *sqlx.DB, guildID string) (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM quota_configs WHERE guild_id = ?`, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to count quota configs for guild %s: %w", guildID, err)
	}
	return count, nil
}

// UpsertQuotaConfig inserts or updates a role's quota config. A fresh config
// starts its reset window at lastReset.
func UpsertQuotaConfig(db *sqlx.DB, cfg *model.QuotaConfig) error {
	query := `INSERT INTO quota_configs (guild_id, role_id, channel_id, points_needed, last_reset)
	          VALUES (:guild_id, :role_id, :channel_id, :points_needed, :last_reset)
	          ON CONFLICT (guild_id, role_id) DO UPDATE SET
	              channel_id = excluded.channel_id,
	              points_needed = excluded.points_needed`
	_, err := db.NamedExec(query, cfg)
	if err != nil {
		return fmt.Errorf("failed to upsert quota config for role %s: %w", cfg.RoleID, err)
	}
	return nil
}

// DeleteQuotaConfig removes a role's quota config along with its rules and
// running log.
func DeleteQuotaConfig(db *sqlx.DB, guildID, roleID string) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin quota config delete: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM quota_configs WHERE guild_id = ? AND role_id = ?`, guildID, roleID)
	if err != nil {
		return fmt.Errorf("failed to delete quota config for role %s: %w", roleID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for role %s: %w", roleID, err)
	}
	if rows == 0 {
		return fmt.Errorf("no quota config found for role %s", roleID)
	}

	if _, err := tx.Exec(`DELETE FROM quota_rules WHERE guild_id = ? AND role_id = ?`, guildID, roleID); err != nil {
		return fmt.Errorf("failed to delete quota rules for role %s: %w", roleID, err)
	}
	if _, err := tx.Exec(`DELETE FROM quota_log WHERE guild_id = ? AND role_id = ?`, guildID, roleID); err != nil {
		return fmt.Errorf("failed to delete quota log for role %s: %w", roleID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quota config delete: %w", err)
	}
	return nil
}

// AddQuotaRule stores a point rule, enforcing key exclusivity in the same
// transaction: a specific-variant rule evicts the general rule for its
// activity, and a general rule evicts every specific-variant rule.
func AddQuotaRule(db *sqlx.DB, rule *model.QuotaRule) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin quota rule update: %w", err)
	}
	defer tx.Rollback()

	if rule.Variant == "" {
		_, err = tx.Exec(
			`DELETE FROM quota_rules WHERE guild_id = ? AND role_id = ? AND activity = ? AND variant != ''`,
			rule.GuildID, rule.RoleID, rule.Activity,
		)
	} else {
		_, err = tx.Exec(
			`DELETE FROM quota_rules WHERE guild_id = ? AND role_id = ? AND activity = ? AND variant = ''`,
			rule.GuildID, rule.RoleID, rule.Activity,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to evict conflicting quota rules for %s: %w", rule.Activity, err)
	}

	query := `INSERT INTO quota_rules (guild_id, role_id, activity, variant, points)
	          VALUES (:guild_id, :role_id, :activity, :variant, :points)
	          ON CONFLICT (guild_id, role_id, activity, variant) DO UPDATE SET
	              points = excluded.points`
	if _, err := tx.NamedExec(query, rule); err != nil {
		return fmt.Errorf("failed to insert quota rule %s: %w", rule.Key(), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quota rule update: %w", err)
	}
	return nil
}

// RemoveQuotaRule deletes a point rule by its exact key.
func RemoveQuotaRule(db *sqlx.DB, guildID, roleID string, key model.RuleKey) error {
	_, err := db.Exec(
		`DELETE FROM quota_rules WHERE guild_id = ? AND role_id = ? AND activity = ? AND variant = ?`,
		guildID, roleID, key.Activity, key.Variant,
	)
	if err != nil {
		return fmt.Errorf("failed to remove quota rule %s: %w", key, err)
	}
	return nil
}

// ListQuotaRules returns all point rules for a role.
func ListQuotaRules(db *sqlx.DB, guildID, roleID string) ([]model.QuotaRule, error) {
	var rules []model.QuotaRule
	err := db.Select(&rules,
		`SELECT * FROM quota_rules WHERE guild_id = ? AND role_id = ? ORDER BY activity, variant`,
		guildID, roleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list quota rules for role %s: %w", roleID, err)
	}
	return rules, nil
}

// LookupRulePoints resolves the point value for a key, preferring the exact
// specific-variant rule, then the general rule for the activity. Returns
// (0, false) when neither exists.
func LookupRulePoints(db *sqlx.DB, guildID, roleID string, key model.RuleKey) (int64, bool, error) {
	var points int64
	err := db.Get(&points,
		`SELECT points FROM quota_rules WHERE guild_id = ? AND role_id = ? AND activity = ? AND variant = ?`,
		guildID, roleID, key.Activity, key.Variant,
	)
	if err == nil {
		return points, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to look up quota rule %s: %w", key, err)
	}

	if key.Variant == "" {
		return 0, false, nil
	}
	err = db.Get(&points,
		`SELECT points FROM quota_rules WHERE guild_id = ? AND role_id = ? AND activity = ? AND variant = ''`,
		guildID, roleID, key.Activity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up general quota rule %s: %w", key.Activity, err)
	}
	return points, true, nil
}

// AppendQuotaLog records one credited activity event.
func AppendQuotaLog(db *sqlx.DB, entry *model.QuotaLogEntry) error {
	query := `INSERT INTO quota_log (guild_id, role_id, user_id, user_tag, activity, variant, points, logged_at)
	          VALUES (:guild_id, :role_id, :user_id, :user_tag, :activity, :variant, :points, :logged_at)`
	_, err := db.NamedExec(query, entry)
	if err != nil {
		return fmt.Errorf("failed to append quota log entry: %w", err)
	}
	return nil
}

// SumQuotaPoints returns the running point total for a role since its last reset.
func SumQuotaPoints(db *sqlx.DB, guildID, roleID string) (int64, error) {
	var total int64
	err := db.Get(&total,
		`SELECT COALESCE(SUM(points), 0) FROM quota_log WHERE guild_id = ? AND role_id = ?`,
		guildID, roleID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sum quota points for role %s: %w", roleID, err)
	}
	return total, nil
}

// ResetQuota archives and clears a role's running log and stamps last_reset
// with the given instant, all in one transaction. The archived entries are
// returned so the caller can hand them to the notification sink.
func ResetQuota(db *sqlx.DB, guildID, roleID string, resetAt int64) ([]model.QuotaLogEntry, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin quota reset: %w", err)
	}
	defer tx.Rollback()

	var archived []model.QuotaLogEntry
	err = tx.Select(&archived,
		`SELECT * FROM quota_log WHERE guild_id = ? AND role_id = ? ORDER BY logged_at, id`,
		guildID, roleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read quota log for role %s: %w", roleID, err)
	}

	if _, err := tx.Exec(`DELETE FROM quota_log WHERE guild_id = ? AND role_id = ?`, guildID, roleID); err != nil {
		return nil, fmt.Errorf("failed to clear quota log for role %s: %w", roleID, err)
	}

	result, err := tx.Exec(
		`UPDATE quota_configs SET last_reset = ? WHERE guild_id = ? AND role_id = ?`,
		resetAt, guildID, roleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update last reset for role %s: %w", roleID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected for role %s: %w", roleID, err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("no quota config found for role %s", roleID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quota reset: %w", err)
	}
	return archived, nil
}
