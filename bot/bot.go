package bot

import (
	"sync/atomic"
	"time"

	"mod-helper/ledger"
	"mod-helper/model"
	"mod-helper/scheduler"
	"mod-helper/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	DB                 *sqlx.DB
	Punishments        *ledger.PunishmentLedger
	Quotas             *ledger.QuotaLedger
	Clock              model.Clock

	config     atomic.Value // *model.Config
	expiration *scheduler.ExpirationScheduler
	quotaReset *scheduler.QuotaResetScheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	b := &Bot{
		Session: dg,
		DB:      db,
		Clock:   model.SystemClock{},
	}
	b.config.Store(cfg)

	locks := utils.NewTenantLocks()
	sink := NewNotifier(dg, cfg.LogChannelID)
	b.Punishments = ledger.NewPunishmentLedger(db, locks, b.Clock, sink)
	b.Quotas = ledger.NewQuotaLedger(db, locks, b.Clock, sink)

	b.expiration = scheduler.NewExpirationScheduler(
		db, b.Punishments, b.Clock, sink,
		time.Duration(cfg.Scheduler.ExpirationIntervalSeconds)*time.Second,
	)
	b.quotaReset = scheduler.NewQuotaResetScheduler(
		db, b.Quotas, b.Clock, sink,
		time.Duration(cfg.Scheduler.QuotaResetIntervalSeconds)*time.Second,
	)

	return b, nil
}

// StartSchedulers begins the expiration and quota reset sweeps. Called once
// at startup; the schedulers run for the lifetime of the process.
func (b *Bot) StartSchedulers() {
	b.expiration.Start()
	b.quotaReset.Start()
}

func (b *Bot) Close() {
	b.expiration.Stop()
	b.quotaReset.Stop()
	b.Session.Close()
}
