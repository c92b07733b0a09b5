package database

import (
	"fmt"

	"mod-helper/model"

	"github.com/jmoiron/sqlx"
)

// GetOrCreateTenant fetches a guild's tenant record, inserting a default one
// on first contact.
func GetOrCreateTenant(db *sqlx.DB, guildID string) (*model.TenantRecord, error) {
	_, err := db.Exec(`INSERT OR IGNORE INTO tenants (guild_id) VALUES (?)`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant record for guild %s: %w", guildID, err)
	}

	var tenant model.TenantRecord
	err = db.Get(&tenant, `SELECT * FROM tenants WHERE guild_id = ?`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant record for guild %s: %w", guildID, err)
	}
	return &tenant, nil
}

// SetResetSchedule updates a guild's weekly quota reset boundary.
func SetResetSchedule(db *sqlx.DB, guildID string, schedule model.ResetSchedule) error {
	_, err := db.Exec(
		`UPDATE tenants SET reset_day = ?, reset_minute = ? WHERE guild_id = ?`,
		schedule.DayOfWeek, schedule.MinuteOfDay, guildID,
	)
	if err != nil {
		return fmt.Errorf("failed to set reset schedule for guild %s: %w", guildID, err)
	}
	return nil
}

// ListTenants returns all known tenant records.
func ListTenants(db *sqlx.DB) ([]model.TenantRecord, error) {
	var tenants []model.TenantRecord
	err := db.Select(&tenants, `SELECT * FROM tenants ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}
