package model

import "time"

// Clock supplies the current time. Ledgers and schedulers take a Clock so
// tests can drive them with simulated time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation of Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// NotificationSink receives lifecycle events for external rendering. The
// ledgers never format user-facing text themselves.
type NotificationSink interface {
	OnPunishmentIssued(record *PunishmentRecord)
	OnPunishmentResolved(record *PunishmentRecord, resolution *ResolutionRecord)
	OnQuotaReset(guildID, roleID string, archived []QuotaLogEntry)
	OnSweepError(guildID string, err error)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) OnPunishmentIssued(*PunishmentRecord)                      {}
func (NopSink) OnPunishmentResolved(*PunishmentRecord, *ResolutionRecord) {}
func (NopSink) OnQuotaReset(string, string, []QuotaLogEntry)              {}
func (NopSink) OnSweepError(string, error)                                {}
