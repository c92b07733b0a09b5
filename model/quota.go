package model

import "fmt"

// MaxQuotaConfigs caps the number of quota configurations per guild.
const MaxQuotaConfigs = 10

// RuleKey identifies a point rule. An empty Variant means the rule is
// general and applies to every variant of the activity; a non-empty Variant
// scopes it to one variant (e.g. one dungeon).
type RuleKey struct {
	Activity string
	Variant  string
}

// General reports whether the key applies to all variants of its activity.
func (k RuleKey) General() bool {
	return k.Variant == ""
}

func (k RuleKey) String() string {
	if k.General() {
		return k.Activity
	}
	return k.Activity + ":" + k.Variant
}

// QuotaRule assigns a point value to a rule key.
// The database table will be named 'quota_rules'.
type QuotaRule struct {
	GuildID  string `db:"guild_id"`
	RoleID   string `db:"role_id"`
	Activity string `db:"activity"`
	Variant  string `db:"variant"` // empty = general rule
	Points   int64  `db:"points"`
}

// Key returns the structured key of the rule.
func (r QuotaRule) Key() RuleKey {
	return RuleKey{Activity: r.Activity, Variant: r.Variant}
}

// QuotaConfig is the per-role quota configuration for a guild.
// The database table will be named 'quota_configs'.
type QuotaConfig struct {
	GuildID      string `db:"guild_id"`
	RoleID       string `db:"role_id"`
	ChannelID    string `db:"channel_id"` // leaderboard channel, may be empty
	PointsNeeded int64  `db:"points_needed"`
	LastReset    int64  `db:"last_reset"` // unix seconds
}

// QuotaLogEntry is one credited activity event.
// The database table will be named 'quota_log'.
type QuotaLogEntry struct {
	ID       int64  `db:"id"`
	GuildID  string `db:"guild_id"`
	RoleID   string `db:"role_id"`
	UserID   string `db:"user_id"`
	UserTag  string `db:"user_tag"`
	Activity string `db:"activity"`
	Variant  string `db:"variant"`
	Points   int64  `db:"points"`
	LoggedAt int64  `db:"logged_at"`
}

// ResetSchedule is a weekly reset boundary: dayOfWeek 0 (Sunday) through 6,
// minuteOfDay 0 through 1439.
type ResetSchedule struct {
	DayOfWeek   int `db:"reset_day"`
	MinuteOfDay int `db:"reset_minute"`
}

// Validate checks the schedule's field ranges.
func (r ResetSchedule) Validate() error {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return fmt.Errorf("day of week out of range: %d", r.DayOfWeek)
	}
	if r.MinuteOfDay < 0 || r.MinuteOfDay > 1439 {
		return fmt.Errorf("minute of day out of range: %d", r.MinuteOfDay)
	}
	return nil
}

// TenantRecord is the per-guild root document: the reset schedule plus the
// punishment history and quota configurations stored alongside it.
type TenantRecord struct {
	GuildID       string `db:"guild_id"`
	ResetSchedule
}
