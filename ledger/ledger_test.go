package ledger

import (
	"sync"
	"testing"
	"time"

	"mod-helper/model"
	"mod-helper/utils"
	"mod-helper/utils/database"

	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Init(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// An in-memory sqlite database exists per connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type resetEvent struct {
	guildID  string
	roleID   string
	archived []model.QuotaLogEntry
}

type captureSink struct {
	mu       sync.Mutex
	issued   []*model.PunishmentRecord
	resolved []*model.PunishmentRecord
	resets   []resetEvent
	errors   []error
}

func (s *captureSink) OnPunishmentIssued(record *model.PunishmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued = append(s.issued, record)
}

func (s *captureSink) OnPunishmentResolved(record *model.PunishmentRecord, _ *model.ResolutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved = append(s.resolved, record)
}

func (s *captureSink) OnQuotaReset(guildID, roleID string, archived []model.QuotaLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, resetEvent{guildID: guildID, roleID: roleID, archived: archived})
}

func (s *captureSink) OnSweepError(_ string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, err)
}

func (s *captureSink) resolvedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resolved)
}

func (s *captureSink) resetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resets)
}

// reacquiringSink takes the tenant lock inside its callbacks. It only works
// if the ledgers emit events after releasing the lock; an event emitted with
// the lock still held deadlocks the test.
type reacquiringSink struct {
	locks *utils.TenantLocks
	captureSink
}

func (s *reacquiringSink) OnPunishmentIssued(record *model.PunishmentRecord) {
	s.locks.Lock(record.GuildID)
	s.locks.Unlock(record.GuildID)
	s.captureSink.OnPunishmentIssued(record)
}

func (s *reacquiringSink) OnPunishmentResolved(record *model.PunishmentRecord, resolution *model.ResolutionRecord) {
	s.locks.Lock(record.GuildID)
	s.locks.Unlock(record.GuildID)
	s.captureSink.OnPunishmentResolved(record, resolution)
}

func (s *reacquiringSink) OnQuotaReset(guildID, roleID string, archived []model.QuotaLogEntry) {
	s.locks.Lock(guildID)
	s.locks.Unlock(guildID)
	s.captureSink.OnQuotaReset(guildID, roleID, archived)
}

var (
	testUser = model.UserSnapshot{ID: "user-1", Tag: "console#8939", Name: "Console"}
	testMod  = model.UserSnapshot{ID: "mod-1", Tag: "darkmattr#0001", Name: "Darkmattr"}
)

func newTestLedgers(t *testing.T, clock model.Clock, sink model.NotificationSink) (*PunishmentLedger, *QuotaLedger) {
	t.Helper()
	db := newTestDB(t)
	locks := utils.NewTenantLocks()
	return NewPunishmentLedger(db, locks, clock, sink), NewQuotaLedger(db, locks, clock, sink)
}
