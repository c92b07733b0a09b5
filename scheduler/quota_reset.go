package scheduler

import (
	"log"
	"sync/atomic"
	"time"

	"mod-helper/ledger"
	"mod-helper/model"
	"mod-helper/utils/database"

	"github.com/jmoiron/sqlx"
)

// QuotaResetScheduler periodically checks, per guild, whether the configured
// weekly reset boundary has been crossed since each quota's last reset and
// archives and clears the running totals when it has. The interval is much
// finer than the weekly granularity it checks, so downtime of any length
// collapses into a single reset per quota.
type QuotaResetScheduler struct {
	db       *sqlx.DB
	quota    *ledger.QuotaLedger
	clock    model.Clock
	sink     model.NotificationSink
	interval time.Duration
	running  atomic.Bool
	done     chan struct{}
}

// NewQuotaResetScheduler creates a stopped scheduler.
func NewQuotaResetScheduler(db *sqlx.DB, quota *ledger.QuotaLedger, clock model.Clock, sink model.NotificationSink, interval time.Duration) *QuotaResetScheduler {
	return &QuotaResetScheduler{
		db:       db,
		quota:    quota,
		clock:    clock,
		sink:     sink,
		interval: interval,
	}
}

// Start transitions the scheduler from stopped to running and begins the
// sweep loop. Calling Start on a running scheduler is a no-op; a stopped
// scheduler may be started again.
func (s *QuotaResetScheduler) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	// A fresh channel per run: the previous one is closed by Stop.
	done := make(chan struct{})
	s.done = done
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-done:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop.
func (s *QuotaResetScheduler) Stop() {
	if s.running.CompareAndSwap(true, false) {
		close(s.done)
	}
}

// Sweep runs one full scan. Guilds are swept independently; a failure in one
// guild is reported and the batch continues with the next.
func (s *QuotaResetScheduler) Sweep() {
	now := s.clock.Now()
	tenants, err := database.ListTenants(s.db)
	if err != nil {
		log.Printf("Quota reset sweep aborted: %v", err)
		return
	}

	for _, tenant := range tenants {
		reset, err := s.quota.ResetDue(tenant.GuildID, now)
		if err != nil {
			log.Printf("Quota reset sweep failed for guild %s: %v", tenant.GuildID, err)
			s.sink.OnSweepError(tenant.GuildID, err)
			continue
		}
		if len(reset) > 0 {
			log.Printf("Reset %d quota(s) for guild %s", len(reset), tenant.GuildID)
		}
	}
}
