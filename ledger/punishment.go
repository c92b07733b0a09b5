package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"mod-helper/model"
	"mod-helper/utils"
	"mod-helper/utils/database"

	"github.com/jmoiron/sqlx"
)

// ErrDuplicateActivePunishment is returned when issuing an exclusive kind
// that the target already has an unresolved instance of.
var ErrDuplicateActivePunishment = errors.New("an unresolved punishment of this kind already exists for this user")

// AutoExpireReason is the reason recorded on scheduler-driven resolutions.
const AutoExpireReason = "automatic expiration"

// PunishmentLedger issues, resolves, and looks up punishments. All mutations
// serialize per guild through the tenant locks.
type PunishmentLedger struct {
	db    *sqlx.DB
	locks *utils.TenantLocks
	clock model.Clock
	sink  model.NotificationSink
}

// NewPunishmentLedger wires a ledger to its collaborators.
func NewPunishmentLedger(db *sqlx.DB, locks *utils.TenantLocks, clock model.Clock, sink model.NotificationSink) *PunishmentLedger {
	return &PunishmentLedger{db: db, locks: locks, clock: clock, sink: sink}
}

// IssueRequest describes a punishment to issue.
type IssueRequest struct {
	GuildID   string
	Kind      model.PunishmentKind
	Target    model.UserSnapshot
	Moderator model.UserSnapshot
	Reason    string
	Evidence  []string
	// DurationSeconds <= 0 means indefinite.
	DurationSeconds int64
}

// Issue appends a new punishment to the guild's history. A positive duration
// sets expiresAt = issuedAt + duration; otherwise the indefinite sentinel is
// stored. Issuing an exclusive kind on a user who already has an unresolved
// one fails with ErrDuplicateActivePunishment.
func (l *PunishmentLedger) Issue(req IssueRequest) (*model.PunishmentRecord, error) {
	if req.Kind.IsReversal() {
		return nil, fmt.Errorf("cannot issue reversal kind %s directly, use Resolve", req.Kind)
	}
	if _, err := model.ParseKind(string(req.Kind)); err != nil {
		return nil, err
	}

	l.locks.Lock(req.GuildID)
	record, err := l.issueLocked(req)
	l.locks.Unlock(req.GuildID)
	if err != nil {
		return nil, err
	}

	// Emitted after the lock is released so a slow sink cannot stall the
	// tenant's other mutations.
	l.sink.OnPunishmentIssued(record)
	return record, nil
}

// issueLocked does the store work of Issue. The caller holds the tenant lock
// and emits the sink event after releasing it.
func (l *PunishmentLedger) issueLocked(req IssueRequest) (*model.PunishmentRecord, error) {
	if req.Kind.Exclusive() {
		active, err := database.FindActivePunishment(l.db, req.GuildID, req.Target.ID, req.Kind)
		if err != nil {
			return nil, err
		}
		if active != nil {
			return nil, fmt.Errorf("%w: %s for user %s", ErrDuplicateActivePunishment, req.Kind, req.Target.ID)
		}
	}

	issuedAt := l.clock.Now().Unix()
	duration := model.IndefiniteSentinel
	expiresAt := model.IndefiniteSentinel
	if req.DurationSeconds > 0 {
		duration = req.DurationSeconds
		expiresAt = issuedAt + req.DurationSeconds
	}

	evidence, err := json.Marshal(append([]string{}, req.Evidence...))
	if err != nil {
		return nil, fmt.Errorf("failed to encode evidence: %w", err)
	}

	record := &model.PunishmentRecord{
		ActionID:      utils.GenerateActionID(),
		GuildID:       req.GuildID,
		Kind:          req.Kind,
		UserID:        req.Target.ID,
		UserTag:       req.Target.Tag,
		UserName:      req.Target.Name,
		ModeratorID:   req.Moderator.ID,
		ModeratorTag:  req.Moderator.Tag,
		ModeratorName: req.Moderator.Name,
		IssuedAt:      issuedAt,
		Duration:      duration,
		ExpiresAt:     expiresAt,
		Reason:        req.Reason,
		Evidence:      string(evidence),
	}

	if err := database.AddPunishmentRecord(l.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ResolutionResult reports the outcome of a Resolve call.
// PunishmentResolved false means there was nothing to undo, which is the
// common case surfaced to the caller rather than an error.
// PunishmentLogged false with PunishmentResolved true means the punishment
// was lifted but the audit record for the reversal could not be written.
type ResolutionResult struct {
	PunishmentResolved bool
	PunishmentLogged   bool
	// ModerationID is the action ID of the logged reversal record.
	ModerationID string
	// Record is the punishment that was resolved.
	Record *model.PunishmentRecord
}

// Resolve lifts the most recent unresolved punishment matching the
// reversal's forward kind for the user. The resolution write is conditional
// on the record still being unresolved, so a concurrent manual reversal and
// an expiry sweep never both fire. The reversal itself is then appended to
// the history for audit; a failure of that secondary write degrades the
// result but does not roll back the resolution.
func (l *PunishmentLedger) Resolve(guildID, userID string, reversalKind model.PunishmentKind, moderator model.UserSnapshot, reason string) (ResolutionResult, error) {
	if !reversalKind.IsReversal() {
		return ResolutionResult{}, fmt.Errorf("kind %s is not a reversal", reversalKind)
	}

	l.locks.Lock(guildID)
	target, err := database.FindActivePunishment(l.db, guildID, userID, reversalKind.ForwardKind())
	if err != nil || target == nil {
		l.locks.Unlock(guildID)
		return ResolutionResult{}, err
	}
	result, resolution, err := l.resolveLocked(target, reversalKind, moderator, reason)
	l.locks.Unlock(guildID)

	if err != nil || !result.PunishmentResolved {
		return result, err
	}
	l.sink.OnPunishmentResolved(target, resolution)
	return result, nil
}

// ResolveByID lifts the one punishment identified by actionID, leaving any
// later punishment of the same kind for the user untouched. The expiration
// sweep resolves through here so the expired record is always the one
// closed. A missing, foreign, or already resolved record yields a zero
// result, not an error.
func (l *PunishmentLedger) ResolveByID(guildID, actionID string, moderator model.UserSnapshot, reason string) (ResolutionResult, error) {
	l.locks.Lock(guildID)
	target, err := database.GetPunishmentByActionID(l.db, actionID)
	if err != nil || target == nil || target.GuildID != guildID || target.Resolved() {
		l.locks.Unlock(guildID)
		return ResolutionResult{}, err
	}
	reversalKind := target.Kind.ReversalKind()
	if reversalKind == "" {
		l.locks.Unlock(guildID)
		return ResolutionResult{}, fmt.Errorf("punishment kind %s has no reversal", target.Kind)
	}
	result, resolution, err := l.resolveLocked(target, reversalKind, moderator, reason)
	l.locks.Unlock(guildID)

	if err != nil || !result.PunishmentResolved {
		return result, err
	}
	l.sink.OnPunishmentResolved(target, resolution)
	return result, nil
}

// resolveLocked writes the conditional resolution update and appends the
// reversal audit record. The caller holds the tenant lock and emits the
// sink event after releasing it.
func (l *PunishmentLedger) resolveLocked(target *model.PunishmentRecord, reversalKind model.PunishmentKind, moderator model.UserSnapshot, reason string) (ResolutionResult, *model.ResolutionRecord, error) {
	now := l.clock.Now().Unix()
	resolution := &model.ResolutionRecord{
		ActionID:  utils.GenerateActionID(),
		Moderator: moderator,
		Reason:    reason,
		IssuedAt:  now,
	}

	resolved, err := database.MarkResolved(l.db, target.ActionID, resolution)
	if err != nil {
		return ResolutionResult{}, nil, err
	}
	if !resolved {
		// Lost the race to another resolver; nothing to undo anymore.
		return ResolutionResult{}, nil, nil
	}

	reversal := &model.PunishmentRecord{
		ActionID:      resolution.ActionID,
		GuildID:       target.GuildID,
		Kind:          reversalKind,
		UserID:        target.UserID,
		UserTag:       target.UserTag,
		UserName:      target.UserName,
		ModeratorID:   moderator.ID,
		ModeratorTag:  moderator.Tag,
		ModeratorName: moderator.Name,
		IssuedAt:      now,
		Duration:      model.IndefiniteSentinel,
		ExpiresAt:     model.IndefiniteSentinel,
		Reason:        reason,
		Evidence:      "[]",
	}

	result := ResolutionResult{
		PunishmentResolved: true,
		PunishmentLogged:   true,
		ModerationID:       resolution.ActionID,
		Record:             target,
	}
	if err := database.AddPunishmentRecord(l.db, reversal); err != nil {
		log.Printf("Failed to log reversal %s for punishment %s: %v", reversalKind, target.ActionID, err)
		result.PunishmentLogged = false
	}
	return result, resolution, nil
}

// FindActive returns the most recent unresolved punishment of kind for a
// user, or nil if none exists.
func (l *PunishmentLedger) FindActive(guildID, userID string, kind model.PunishmentKind) (*model.PunishmentRecord, error) {
	return database.FindActivePunishment(l.db, guildID, userID, kind)
}

// LookupByID retrieves a punishment by moderation ID across all guilds, or
// nil if the ID is unknown. Whether a record from another guild should be
// redacted is the caller's decision.
func (l *PunishmentLedger) LookupByID(actionID string) (*model.PunishmentRecord, error) {
	return database.GetPunishmentByActionID(l.db, actionID)
}

// History returns a user's punishment history in a guild, in issuance order.
func (l *PunishmentLedger) History(guildID, userID string) ([]model.PunishmentRecord, error) {
	return database.GetPunishmentsByUserID(l.db, guildID, userID)
}
