package model

import (
	"database/sql"
	"fmt"
)

// PunishmentKind identifies a disciplinary action or its reversal.
type PunishmentKind string

const (
	KindSuspend          PunishmentKind = "Suspend"
	KindMute             PunishmentKind = "Mute"
	KindBlacklist        PunishmentKind = "Blacklist"
	KindModmailBlacklist PunishmentKind = "ModmailBlacklist"
	KindWarn             PunishmentKind = "Warn"
	KindSectionSuspend   PunishmentKind = "SectionSuspend"

	KindUnsuspend          PunishmentKind = "Unsuspend"
	KindUnmute             PunishmentKind = "Unmute"
	KindUnblacklist        PunishmentKind = "Unblacklist"
	KindModmailUnblacklist PunishmentKind = "ModmailUnblacklist"
	KindUnwarn             PunishmentKind = "Unwarn"
	KindSectionUnsuspend   PunishmentKind = "SectionUnsuspend"
)

// IndefiniteSentinel marks a duration or expiry with no end.
const IndefiniteSentinel int64 = -1

type kindInfo struct {
	reversal  PunishmentKind // zero for reversal kinds
	forward   PunishmentKind // zero for forward kinds
	exclusive bool           // at most one unresolved instance per user per guild
}

// kindTable is the single source of truth for forward/reversal pairing.
// Warn has a reversal for record-keeping but no active/expired notion.
var kindTable = map[PunishmentKind]kindInfo{
	KindSuspend:          {reversal: KindUnsuspend, exclusive: true},
	KindMute:             {reversal: KindUnmute, exclusive: true},
	KindBlacklist:        {reversal: KindUnblacklist, exclusive: true},
	KindModmailBlacklist: {reversal: KindModmailUnblacklist, exclusive: true},
	KindWarn:             {reversal: KindUnwarn},
	KindSectionSuspend:   {reversal: KindSectionUnsuspend, exclusive: true},

	KindUnsuspend:          {forward: KindSuspend},
	KindUnmute:             {forward: KindMute},
	KindUnblacklist:        {forward: KindBlacklist},
	KindModmailUnblacklist: {forward: KindModmailBlacklist},
	KindUnwarn:             {forward: KindWarn},
	KindSectionUnsuspend:   {forward: KindSectionSuspend},
}

// ParseKind validates a raw kind string.
func ParseKind(s string) (PunishmentKind, error) {
	k := PunishmentKind(s)
	if _, ok := kindTable[k]; !ok {
		return "", fmt.Errorf("unknown punishment kind: %q", s)
	}
	return k, nil
}

// IsReversal reports whether k lifts a previously issued punishment.
func (k PunishmentKind) IsReversal() bool {
	return kindTable[k].forward != ""
}

// ForwardKind returns the kind that a reversal lifts, or "" if k is not a reversal.
func (k PunishmentKind) ForwardKind() PunishmentKind {
	return kindTable[k].forward
}

// ReversalKind returns the kind that lifts k, or "" if k has none.
func (k PunishmentKind) ReversalKind() PunishmentKind {
	return kindTable[k].reversal
}

// Exclusive reports whether at most one unresolved punishment of this kind
// may exist per user per guild.
func (k PunishmentKind) Exclusive() bool {
	return kindTable[k].exclusive
}

// UserSnapshot is an identity captured at issuance time so punishment history
// stays readable even if the account is later renamed or deleted.
type UserSnapshot struct {
	ID   string
	Tag  string
	Name string
}

// SystemModerator is the synthetic identity used by scheduler sweeps.
var SystemModerator = UserSnapshot{ID: "system", Tag: "system", Name: "System"}

// PunishmentRecord represents a single punishment record in the database.
// The database table will be named 'punishments'.
type PunishmentRecord struct {
	ActionID      string         `db:"action_id"` // Primary key, globally unique
	GuildID       string         `db:"guild_id"`
	Kind          PunishmentKind `db:"kind"`
	UserID        string         `db:"user_id"`
	UserTag       string         `db:"user_tag"`
	UserName      string         `db:"user_name"`
	ModeratorID   string         `db:"moderator_id"`
	ModeratorTag  string         `db:"moderator_tag"`
	ModeratorName string         `db:"moderator_name"`
	IssuedAt      int64          `db:"issued_at"`
	Duration      int64          `db:"duration"`   // seconds, -1 = indefinite
	ExpiresAt     int64          `db:"expires_at"` // unix seconds, -1 = indefinite
	Reason        string         `db:"reason"`
	Evidence      string         `db:"evidence"` // JSON array of reference strings

	// Resolution fields, set at most once and never overwritten.
	ResolvedID      sql.NullString `db:"resolved_id"` // action ID of the reversal
	ResolvedModID   sql.NullString `db:"resolved_mod_id"`
	ResolvedModTag  sql.NullString `db:"resolved_mod_tag"`
	ResolvedModName sql.NullString `db:"resolved_mod_name"`
	ResolvedReason  sql.NullString `db:"resolved_reason"`
	ResolvedAt      sql.NullInt64  `db:"resolved_at"`
}

// Resolved reports whether the punishment has been lifted.
func (p *PunishmentRecord) Resolved() bool {
	return p.ResolvedID.Valid
}

// Resolution returns the embedded resolution record, or nil if unresolved.
func (p *PunishmentRecord) Resolution() *ResolutionRecord {
	if !p.Resolved() {
		return nil
	}
	return &ResolutionRecord{
		ActionID: p.ResolvedID.String,
		Moderator: UserSnapshot{
			ID:   p.ResolvedModID.String,
			Tag:  p.ResolvedModTag.String,
			Name: p.ResolvedModName.String,
		},
		Reason:   p.ResolvedReason.String,
		IssuedAt: p.ResolvedAt.Int64,
	}
}

// User returns the affected user's snapshot.
func (p *PunishmentRecord) User() UserSnapshot {
	return UserSnapshot{ID: p.UserID, Tag: p.UserTag, Name: p.UserName}
}

// Moderator returns the issuing moderator's snapshot.
func (p *PunishmentRecord) Moderator() UserSnapshot {
	return UserSnapshot{ID: p.ModeratorID, Tag: p.ModeratorTag, Name: p.ModeratorName}
}

// ResolutionRecord describes how a punishment was lifted.
type ResolutionRecord struct {
	ActionID  string
	Moderator UserSnapshot
	Reason    string
	IssuedAt  int64
}
