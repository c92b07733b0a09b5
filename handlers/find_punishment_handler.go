package handlers

import (
	"fmt"
	"log"

	"mod-helper/bot"
	"mod-helper/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleFindPunishmentCommand looks up a punishment by moderation ID. The ID
// space is global; records belonging to another guild are redacted here
// rather than in the ledger.
func HandleFindPunishmentCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	actionID := data.Options[0].StringValue()

	record, err := b.Punishments.LookupByID(actionID)
	if err != nil {
		log.Printf("Error looking up punishment %s: %v", actionID, err)
		utils.SendErrorResponse(s, i, "Failed to look up this moderation ID.")
		return
	}
	if record == nil {
		utils.SendErrorResponse(s, i, fmt.Sprintf("The moderation ID `%s` was not found.", actionID))
		return
	}
	if foreignRecordHidden(record.GuildID, i.GuildID, i.Member.User.ID, b.GetConfig().DeveloperUserIDs) {
		utils.SendErrorResponse(s, i, "This moderation ID belongs to another server.")
		return
	}

	status := "Active"
	if record.Kind.IsReversal() {
		status = "Reversal Entry"
	} else if record.Resolved() {
		status = "Resolved"
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Punishment: %s", record.Kind),
		Color: 0x3498DB,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", record.UserName, record.UserID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", record.ModeratorName, record.ModeratorID), Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{Name: "Issued", Value: fmt.Sprintf("<t:%d:F>", record.IssuedAt), Inline: true},
			{Name: "Reason", Value: record.Reason},
		},
	}
	if resolution := record.Resolution(); resolution != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Resolved",
			Value: fmt.Sprintf("By %s at <t:%d:F>: %s",
				resolution.Moderator.Name, resolution.IssuedAt, resolution.Reason),
		})
	}
	if record.GuildID != i.GuildID {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Server: %s", record.GuildID),
		}
	}
	utils.SendEmbedResponse(s, i, embed)
}

// foreignRecordHidden reports whether a record from another guild must be
// redacted from the invoker. Developers may inspect any guild's records.
func foreignRecordHidden(recordGuildID, invokerGuildID, userID string, developerUserIDs []string) bool {
	if recordGuildID == invokerGuildID {
		return false
	}
	for _, id := range developerUserIDs {
		if id == userID {
			return false
		}
	}
	return true
}
