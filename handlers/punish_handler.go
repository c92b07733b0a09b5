package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"mod-helper/bot"
	"mod-helper/ledger"
	"mod-helper/model"
	"mod-helper/utils"

	"github.com/bwmarrin/discordgo"
)

// HandlePunishCommand issues a punishment through the ledger.
func HandlePunishCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	options := optionMap(i.ApplicationCommandData().Options)

	kind, err := model.ParseKind(options["kind"].StringValue())
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, "Unknown punishment kind.")
		return
	}

	target := options["member"].UserValue(s)
	reason := options["reason"].StringValue()

	var durationSeconds int64
	if opt, ok := options["duration"]; ok {
		d, err := utils.ParseDuration(opt.StringValue())
		if err != nil || d <= 0 {
			utils.SendFollowUpError(s, i.Interaction, "Invalid duration. Use forms like 30m, 12h or 3d.")
			return
		}
		durationSeconds = int64(d.Seconds())
	}

	var evidence []string
	if opt, ok := options["evidence"]; ok {
		evidence = strings.Fields(opt.StringValue())
	}

	record, err := b.Punishments.Issue(ledger.IssueRequest{
		GuildID:         i.GuildID,
		Kind:            kind,
		Target:          snapshotOf(target),
		Moderator:       snapshotOf(i.Member.User),
		Reason:          reason,
		Evidence:        evidence,
		DurationSeconds: durationSeconds,
	})
	if errors.Is(err, ledger.ErrDuplicateActivePunishment) {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("%s already has an active %s.", target.Mention(), kind))
		return
	}
	if err != nil {
		log.Printf("Error issuing punishment: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to save the punishment record.")
		return
	}

	expiry := "Never"
	if record.ExpiresAt != model.IndefiniteSentinel {
		expiry = fmt.Sprintf("<t:%d:F>", record.ExpiresAt)
	}
	utils.SendFollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Issued", record.Kind),
		Description: fmt.Sprintf("You have punished %s (%s).", target.Mention(), record.UserName),
		Color:       0x992D22,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reason", Value: reason},
			{Name: "Expires", Value: expiry, Inline: true},
			{Name: "Moderation ID", Value: record.ActionID, Inline: true},
		},
	})
}

// HandleUnpunishCommand lifts a member's active punishment.
func HandleUnpunishCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	options := optionMap(i.ApplicationCommandData().Options)

	kind, err := model.ParseKind(options["kind"].StringValue())
	if err != nil || !kind.IsReversal() {
		utils.SendFollowUpError(s, i.Interaction, "Unknown reversal kind.")
		return
	}

	target := options["member"].UserValue(s)
	reason := options["reason"].StringValue()

	result, err := b.Punishments.Resolve(i.GuildID, target.ID, kind, snapshotOf(i.Member.User), reason)
	if err != nil {
		log.Printf("Error resolving punishment: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Something went wrong while lifting this punishment.")
		return
	}

	if !result.PunishmentResolved {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf(
			"%s has no active %s to lift.", target.Mention(), kind.ForwardKind(),
		))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Lifted", kind.ForwardKind()),
		Description: fmt.Sprintf("You have unpunished %s.", target.Mention()),
		Color:       0x2ECC71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reason", Value: reason},
		},
	}
	if result.PunishmentLogged {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Moderation ID", Value: result.ModerationID,
		})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Warning",
			Value: "Something went wrong when saving this into the user's punishment history. " +
				"The punishment is still lifted, though.",
		})
	}
	utils.SendFollowUpEmbed(s, i.Interaction, embed)
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
