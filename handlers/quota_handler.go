package handlers

import (
	"errors"
	"fmt"
	"log"

	"mod-helper/bot"
	"mod-helper/ledger"
	"mod-helper/model"
	"mod-helper/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleQuotaConfigCommand dispatches the quota-config subcommands. Each
// subcommand is a single commit point against the ledger; there is no
// multi-step dialog state to hold a lock across.
func HandleQuotaConfigCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	sub := data.Options[0]
	options := optionMap(sub.Options)

	switch sub.Name {
	case "reset-time":
		day := int(options["day"].IntValue())
		minute, err := utils.ParseTimeOfDay(options["time"].StringValue())
		if err != nil {
			utils.SendErrorResponse(s, i, "Invalid time. Use hh:mm, e.g. 17:30.")
			return
		}
		schedule := model.ResetSchedule{DayOfWeek: day, MinuteOfDay: minute}
		if err := b.Quotas.SetResetSchedule(i.GuildID, schedule); err != nil {
			log.Printf("Error setting reset schedule: %v", err)
			utils.SendErrorResponse(s, i, "Failed to set the reset time.")
			return
		}
		utils.SendPublicResponse(s, i, fmt.Sprintf("Quotas now reset on day %d at %02d:%02d.", day, minute/60, minute%60))

	case "set":
		role := options["role"].RoleValue(s, i.GuildID)
		points := options["points"].IntValue()
		channelID := ""
		if opt, ok := options["channel"]; ok {
			channelID = opt.ChannelValue(s).ID
		}
		err := b.Quotas.UpsertConfig(i.GuildID, role.ID, channelID, points)
		if errors.Is(err, ledger.ErrQuotaCapReached) {
			utils.SendErrorResponse(s, i, fmt.Sprintf("This server already has %d quotas configured.", model.MaxQuotaConfigs))
			return
		}
		if err != nil {
			log.Printf("Error upserting quota config: %v", err)
			utils.SendErrorResponse(s, i, "Failed to save the quota configuration.")
			return
		}
		utils.SendPublicResponse(s, i, fmt.Sprintf("Quota for %s saved: %d points needed weekly.", role.Mention(), points))

	case "remove":
		role := options["role"].RoleValue(s, i.GuildID)
		err := b.Quotas.RemoveConfig(i.GuildID, role.ID)
		if errors.Is(err, ledger.ErrNoQuotaConfig) {
			utils.SendErrorResponse(s, i, fmt.Sprintf("%s has no quota configured.", role.Mention()))
			return
		}
		if err != nil {
			log.Printf("Error removing quota config: %v", err)
			utils.SendErrorResponse(s, i, "Failed to remove the quota configuration.")
			return
		}
		utils.SendPublicResponse(s, i, fmt.Sprintf("Quota for %s removed.", role.Mention()))

	case "add-rule":
		role := options["role"].RoleValue(s, i.GuildID)
		key := ruleKeyFrom(options)
		points := options["points"].IntValue()
		err := b.Quotas.AddRule(i.GuildID, role.ID, key, points)
		if errors.Is(err, ledger.ErrNoQuotaConfig) {
			utils.SendErrorResponse(s, i, fmt.Sprintf("%s has no quota configured.", role.Mention()))
			return
		}
		if err != nil {
			log.Printf("Error adding quota rule: %v", err)
			utils.SendErrorResponse(s, i, "Failed to save the point rule.")
			return
		}
		utils.SendPublicResponse(s, i, fmt.Sprintf("Rule saved: %s is worth %d points for %s.", key, points, role.Mention()))

	case "remove-rule":
		role := options["role"].RoleValue(s, i.GuildID)
		key := ruleKeyFrom(options)
		if err := b.Quotas.RemoveRule(i.GuildID, role.ID, key); err != nil {
			log.Printf("Error removing quota rule: %v", err)
			utils.SendErrorResponse(s, i, "Failed to remove the point rule.")
			return
		}
		utils.SendPublicResponse(s, i, fmt.Sprintf("Rule %s removed for %s.", key, role.Mention()))

	case "reset":
		role := options["role"].RoleValue(s, i.GuildID)
		err := b.Quotas.ResetOne(i.GuildID, role.ID, b.Clock.Now())
		if err != nil {
			log.Printf("Error resetting quota: %v", err)
			utils.SendErrorResponse(s, i, "Failed to reset this quota.")
			return
		}
		utils.SendPublicResponse(s, i, fmt.Sprintf("Quota for %s has been reset.", role.Mention()))
	}
}

// HandleQuotaLogCommand credits an activity toward a role's quota.
func HandleQuotaLogCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	options := optionMap(i.ApplicationCommandData().Options)

	role := options["role"].RoleValue(s, i.GuildID)
	key := ruleKeyFrom(options)

	source := i.Member.User
	if opt, ok := options["member"]; ok {
		source = opt.UserValue(s)
	}

	if err := b.Quotas.Credit(i.GuildID, role.ID, key, snapshotOf(source)); err != nil {
		log.Printf("Error crediting quota: %v", err)
		utils.SendErrorResponse(s, i, "Failed to log this activity.")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Logged %s for %s.", key, role.Mention()))
}

// HandleQuotaStatusCommand shows a role's running total against its threshold.
func HandleQuotaStatusCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	options := optionMap(i.ApplicationCommandData().Options)
	role := options["role"].RoleValue(s, i.GuildID)

	total, err := b.Quotas.CurrentTotal(i.GuildID, role.ID)
	if errors.Is(err, ledger.ErrNoQuotaConfig) {
		utils.SendErrorResponse(s, i, fmt.Sprintf("%s has no quota configured.", role.Mention()))
		return
	}
	if err != nil {
		log.Printf("Error reading quota total: %v", err)
		utils.SendErrorResponse(s, i, "Failed to read the quota total.")
		return
	}
	passed, err := b.Quotas.Passed(i.GuildID, role.ID)
	if err != nil {
		log.Printf("Error checking quota pass: %v", err)
		utils.SendErrorResponse(s, i, "Failed to read the quota total.")
		return
	}

	status := "❌ Not met"
	if passed {
		status = "✅ Met"
	}
	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title: "Quota Status",
		Color: 0x3498DB,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Role", Value: role.Mention(), Inline: true},
			{Name: "Current Total", Value: fmt.Sprintf("%d points", total), Inline: true},
			{Name: "Quota", Value: status, Inline: true},
		},
	})
}

func ruleKeyFrom(options map[string]*discordgo.ApplicationCommandInteractionDataOption) model.RuleKey {
	key := model.RuleKey{Activity: options["activity"].StringValue()}
	if opt, ok := options["variant"]; ok {
		key.Variant = opt.StringValue()
	}
	return key
}
