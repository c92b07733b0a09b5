package bot

import (
	"fmt"
	"log"
	"time"

	"mod-helper/model"

	"github.com/bwmarrin/discordgo"
)

const (
	colorIssued   = 15158332 // Red
	colorResolved = 3066993  // Green
	colorReset    = 3447003  // Blue
	colorError    = 15105570 // Orange
)

// Notifier renders ledger lifecycle events as embeds in the log channel.
// It is the only place punishment and quota events get user-facing text.
type Notifier struct {
	session      *discordgo.Session
	logChannelID string
}

// NewNotifier creates a notifier. An empty channel ID disables rendering.
func NewNotifier(session *discordgo.Session, logChannelID string) *Notifier {
	return &Notifier{session: session, logChannelID: logChannelID}
}

func (n *Notifier) send(embed *discordgo.MessageEmbed) {
	if n.logChannelID == "" {
		return
	}
	if _, err := n.session.ChannelMessageSendEmbed(n.logChannelID, embed); err != nil {
		log.Printf("Failed to send notification embed: %v", err)
	}
}

func (n *Notifier) OnPunishmentIssued(record *model.PunishmentRecord) {
	expiry := "Never"
	if record.ExpiresAt != model.IndefiniteSentinel {
		expiry = fmt.Sprintf("<t:%d:F>", record.ExpiresAt)
	}
	n.send(&discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Issued", record.Kind),
		Color: colorIssued,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", record.UserName, record.UserID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", record.ModeratorName, record.ModeratorID), Inline: true},
			{Name: "Expires", Value: expiry, Inline: true},
			{Name: "Reason", Value: record.Reason},
			{Name: "Moderation ID", Value: record.ActionID},
		},
		Timestamp: time.Unix(record.IssuedAt, 0).Format(time.RFC3339),
	})
}

func (n *Notifier) OnPunishmentResolved(record *model.PunishmentRecord, resolution *model.ResolutionRecord) {
	n.send(&discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Lifted", record.Kind),
		Color: colorResolved,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", record.UserName, record.UserID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", resolution.Moderator.Name, resolution.Moderator.ID), Inline: true},
			{Name: "Reason", Value: resolution.Reason},
			{Name: "Moderation ID", Value: resolution.ActionID},
		},
		Timestamp: time.Unix(resolution.IssuedAt, 0).Format(time.RFC3339),
	})
}

func (n *Notifier) OnQuotaReset(guildID, roleID string, archived []model.QuotaLogEntry) {
	var total int64
	for _, entry := range archived {
		total += entry.Points
	}
	n.send(&discordgo.MessageEmbed{
		Title: "Quota Reset",
		Color: colorReset,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Guild", Value: guildID, Inline: true},
			{Name: "Role", Value: fmt.Sprintf("<@&%s>", roleID), Inline: true},
			{Name: "Archived Entries", Value: fmt.Sprintf("%d (%d points)", len(archived), total), Inline: true},
		},
	})
}

func (n *Notifier) OnSweepError(guildID string, err error) {
	n.send(&discordgo.MessageEmbed{
		Title: "Sweep Error",
		Color: colorError,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Guild", Value: guildID, Inline: true},
			{Name: "Error", Value: err.Error()},
		},
	})
}
