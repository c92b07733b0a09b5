package ledger

import (
	"errors"
	"fmt"
	"time"

	"mod-helper/model"
	"mod-helper/utils"
	"mod-helper/utils/database"

	"github.com/jmoiron/sqlx"
)

// ErrQuotaCapReached is returned when a guild already has the maximum number
// of quota configurations.
var ErrQuotaCapReached = errors.New("maximum number of quota configurations reached")

// ErrNoQuotaConfig is returned for operations on a role with no quota config.
var ErrNoQuotaConfig = errors.New("no quota configuration for this role")

// QuotaLedger accumulates points per role from logged activity and manages
// quota configuration. All mutations serialize per guild through the tenant
// locks.
type QuotaLedger struct {
	db    *sqlx.DB
	locks *utils.TenantLocks
	clock model.Clock
	sink  model.NotificationSink
}

// NewQuotaLedger wires a ledger to its collaborators.
func NewQuotaLedger(db *sqlx.DB, locks *utils.TenantLocks, clock model.Clock, sink model.NotificationSink) *QuotaLedger {
	return &QuotaLedger{db: db, locks: locks, clock: clock, sink: sink}
}

// Credit awards points for one activity event. The point value resolution
// prefers an exact specific-variant rule, then the general rule for the
// activity. An activity with no configured rule is worth zero and is not
// recorded; that is not an error.
func (l *QuotaLedger) Credit(guildID, roleID string, key model.RuleKey, source model.UserSnapshot) error {
	l.locks.Lock(guildID)
	defer l.locks.Unlock(guildID)

	points, found, err := database.LookupRulePoints(l.db, guildID, roleID, key)
	if err != nil {
		return err
	}
	if !found || points == 0 {
		return nil
	}

	entry := &model.QuotaLogEntry{
		GuildID:  guildID,
		RoleID:   roleID,
		UserID:   source.ID,
		UserTag:  source.Tag,
		Activity: key.Activity,
		Variant:  key.Variant,
		Points:   points,
		LoggedAt: l.clock.Now().Unix(),
	}
	return database.AppendQuotaLog(l.db, entry)
}

// CurrentTotal returns the running point total for a role since its last reset.
func (l *QuotaLedger) CurrentTotal(guildID, roleID string) (int64, error) {
	cfg, err := database.GetQuotaConfig(l.db, guildID, roleID)
	if err != nil {
		return 0, err
	}
	if cfg == nil {
		return 0, fmt.Errorf("%w: %s", ErrNoQuotaConfig, roleID)
	}
	return database.SumQuotaPoints(l.db, guildID, roleID)
}

// Passed reports whether a role's running total meets its threshold.
func (l *QuotaLedger) Passed(guildID, roleID string) (bool, error) {
	cfg, err := database.GetQuotaConfig(l.db, guildID, roleID)
	if err != nil {
		return false, err
	}
	if cfg == nil {
		return false, fmt.Errorf("%w: %s", ErrNoQuotaConfig, roleID)
	}
	total, err := database.SumQuotaPoints(l.db, guildID, roleID)
	if err != nil {
		return false, err
	}
	return total >= cfg.PointsNeeded, nil
}

// resetOutcome is a completed reset whose sink event is still pending.
type resetOutcome struct {
	roleID   string
	archived []model.QuotaLogEntry
}

// ResetOne archives and clears a role's running log and stamps lastReset
// with the given instant. Manual resets pass the current time; the reset
// scheduler passes the crossed boundary instant.
func (l *QuotaLedger) ResetOne(guildID, roleID string, at time.Time) error {
	l.locks.Lock(guildID)
	archived, err := l.resetLocked(guildID, roleID, at)
	l.locks.Unlock(guildID)
	if err != nil {
		return err
	}

	// Emitted after the lock is released so a slow sink cannot stall the
	// tenant's other mutations.
	l.sink.OnQuotaReset(guildID, roleID, archived)
	return nil
}

// resetLocked does the store work of ResetOne. The caller holds the guild's
// lock and emits the sink event after releasing it.
func (l *QuotaLedger) resetLocked(guildID, roleID string, at time.Time) ([]model.QuotaLogEntry, error) {
	return database.ResetQuota(l.db, guildID, roleID, at.Unix())
}

// ResetDue resets every quota config in the guild whose weekly boundary has
// been crossed, stamping lastReset with the crossed boundary instant rather
// than now. The check and the resets run under one tenant lock acquisition
// so a concurrent manual reset cannot interleave. Returns the role IDs that
// were reset.
func (l *QuotaLedger) ResetDue(guildID string, now time.Time) ([]string, error) {
	l.locks.Lock(guildID)
	outcomes, err := l.resetDueLocked(guildID, now)
	l.locks.Unlock(guildID)

	reset := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		l.sink.OnQuotaReset(guildID, outcome.roleID, outcome.archived)
		reset = append(reset, outcome.roleID)
	}
	return reset, err
}

func (l *QuotaLedger) resetDueLocked(guildID string, now time.Time) ([]resetOutcome, error) {
	tenant, err := database.GetOrCreateTenant(l.db, guildID)
	if err != nil {
		return nil, err
	}
	configs, err := database.ListQuotaConfigs(l.db, guildID)
	if err != nil {
		return nil, err
	}

	var outcomes []resetOutcome
	for _, cfg := range configs {
		lastReset := time.Unix(cfg.LastReset, 0).In(now.Location())
		boundary, crossed := tenant.ResetSchedule.LastCrossed(lastReset, now)
		if !crossed {
			continue
		}
		archived, err := l.resetLocked(guildID, cfg.RoleID, boundary)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, resetOutcome{roleID: cfg.RoleID, archived: archived})
	}
	return outcomes, nil
}

// UpsertConfig creates or updates a role's quota configuration, enforcing
// the per-guild cap on creation.
func (l *QuotaLedger) UpsertConfig(guildID, roleID, channelID string, pointsNeeded int64) error {
	if pointsNeeded <= 0 {
		return fmt.Errorf("points needed must be positive, got %d", pointsNeeded)
	}

	l.locks.Lock(guildID)
	defer l.locks.Unlock(guildID)

	existing, err := database.GetQuotaConfig(l.db, guildID, roleID)
	if err != nil {
		return err
	}
	if existing == nil {
		count, err := database.CountQuotaConfigs(l.db, guildID)
		if err != nil {
			return err
		}
		if count >= model.MaxQuotaConfigs {
			return fmt.Errorf("%w (%d)", ErrQuotaCapReached, model.MaxQuotaConfigs)
		}
	}

	cfg := &model.QuotaConfig{
		GuildID:      guildID,
		RoleID:       roleID,
		ChannelID:    channelID,
		PointsNeeded: pointsNeeded,
		LastReset:    l.clock.Now().Unix(),
	}
	return database.UpsertQuotaConfig(l.db, cfg)
}

// RemoveConfig destroys a role's quota configuration, rules, and log.
func (l *QuotaLedger) RemoveConfig(guildID, roleID string) error {
	l.locks.Lock(guildID)
	defer l.locks.Unlock(guildID)

	existing, err := database.GetQuotaConfig(l.db, guildID, roleID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrNoQuotaConfig, roleID)
	}
	return database.DeleteQuotaConfig(l.db, guildID, roleID)
}

// AddRule sets the point value for a rule key. Adding a specific-variant
// rule evicts any general rule for the same activity and vice versa, so at
// most one tier of specificity exists per activity at a time. Enforcing this
// at edit time keeps Credit's lookup simple and total.
func (l *QuotaLedger) AddRule(guildID, roleID string, key model.RuleKey, points int64) error {
	if key.Activity == "" {
		return errors.New("rule activity must not be empty")
	}
	if points <= 0 {
		return fmt.Errorf("rule points must be positive, got %d", points)
	}

	l.locks.Lock(guildID)
	defer l.locks.Unlock(guildID)

	cfg, err := database.GetQuotaConfig(l.db, guildID, roleID)
	if err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("%w: %s", ErrNoQuotaConfig, roleID)
	}

	rule := &model.QuotaRule{
		GuildID:  guildID,
		RoleID:   roleID,
		Activity: key.Activity,
		Variant:  key.Variant,
		Points:   points,
	}
	return database.AddQuotaRule(l.db, rule)
}

// RemoveRule deletes a rule by its exact key.
func (l *QuotaLedger) RemoveRule(guildID, roleID string, key model.RuleKey) error {
	l.locks.Lock(guildID)
	defer l.locks.Unlock(guildID)
	return database.RemoveQuotaRule(l.db, guildID, roleID, key)
}

// Rules lists a role's point rules.
func (l *QuotaLedger) Rules(guildID, roleID string) ([]model.QuotaRule, error) {
	return database.ListQuotaRules(l.db, guildID, roleID)
}

// Configs lists a guild's quota configurations.
func (l *QuotaLedger) Configs(guildID string) ([]model.QuotaConfig, error) {
	return database.ListQuotaConfigs(l.db, guildID)
}

// SetResetSchedule updates the guild's weekly reset boundary.
func (l *QuotaLedger) SetResetSchedule(guildID string, schedule model.ResetSchedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	l.locks.Lock(guildID)
	defer l.locks.Unlock(guildID)

	if _, err := database.GetOrCreateTenant(l.db, guildID); err != nil {
		return err
	}
	return database.SetResetSchedule(l.db, guildID, schedule)
}

// ResetSchedule returns the guild's weekly reset boundary, creating the
// tenant record with the default schedule on first contact.
func (l *QuotaLedger) ResetSchedule(guildID string) (model.ResetSchedule, error) {
	tenant, err := database.GetOrCreateTenant(l.db, guildID)
	if err != nil {
		return model.ResetSchedule{}, err
	}
	return tenant.ResetSchedule, nil
}
