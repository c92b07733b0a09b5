package scheduler

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"mod-helper/ledger"
	"mod-helper/model"
	"mod-helper/utils/database"

	"github.com/jmoiron/sqlx"
)

// ExpirationScheduler periodically scans all guilds for unresolved
// punishments whose finite expiry has passed and resolves them through the
// punishment ledger with the system moderator identity.
type ExpirationScheduler struct {
	db       *sqlx.DB
	punish   *ledger.PunishmentLedger
	clock    model.Clock
	sink     model.NotificationSink
	interval time.Duration
	running  atomic.Bool
	done     chan struct{}
}

// NewExpirationScheduler creates a stopped scheduler.
func NewExpirationScheduler(db *sqlx.DB, punish *ledger.PunishmentLedger, clock model.Clock, sink model.NotificationSink, interval time.Duration) *ExpirationScheduler {
	return &ExpirationScheduler{
		db:       db,
		punish:   punish,
		clock:    clock,
		sink:     sink,
		interval: interval,
	}
}

// Start transitions the scheduler from stopped to running and begins the
// sweep loop. Calling Start on a running scheduler is a no-op; a stopped
// scheduler may be started again.
func (s *ExpirationScheduler) Start() {
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
func (s *ExpirationScheduler) Stop() {
	if s.running.CompareAndSwap(true, false) {
		close(s.done)
	}
}

// Sweep runs one full scan. Guilds are swept independently; a failure in one
// guild is reported and the batch continues with the next.
func (s *ExpirationScheduler) Sweep() {
	now := s.clock.Now().Unix()
	guildIDs, err := database.ListGuildsWithExpired(s.db, now)
	if err != nil {
		log.Printf("Expiration sweep aborted: %v", err)
		return
	}

	for _, guildID := range guildIDs {
		if err := s.sweepGuild(guildID, now); err != nil {
			log.Printf("Expiration sweep failed for guild %s: %v", guildID, err)
			s.sink.OnSweepError(guildID, err)
		}
	}
}

func (s *ExpirationScheduler) sweepGuild(guildID string, now int64) error {
	expired, err := database.ListExpiredPunishments(s.db, guildID, now)
	if err != nil {
		return err
	}

	for _, record := range expired {
		if record.Kind.ReversalKind() == "" {
			continue
		}
		// ResolveByID re-checks under the tenant lock, so a punishment lifted
		// manually between the read and here is simply skipped. Targeting the
		// action ID leaves any later punishment of the same kind for the user
		// untouched.
		_, err := s.punish.ResolveByID(guildID, record.ActionID, model.SystemModerator, ledger.AutoExpireReason)
		if err != nil {
			return fmt.Errorf("failed to auto-resolve punishment %s: %w", record.ActionID, err)
		}
	}
	return nil
}
