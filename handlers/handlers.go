package handlers

import (
	"log"

	"mod-helper/bot"
	"mod-helper/model"
	"mod-helper/utils"

	"github.com/bwmarrin/discordgo"
)

// Register attaches the interaction dispatcher to the bot's session.
func Register(b *bot.Bot) {
	cmdHandlers := commandHandlers(b)
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := cmdHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	requireModerator := func(next func(s *discordgo.Session, i *discordgo.InteractionCreate)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !hasPermission(b, i, utils.ModeratorPermission) {
				utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
				return
			}
			next(s, i)
		}
	}
	requireAdmin := func(next func(s *discordgo.Session, i *discordgo.InteractionCreate)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !hasPermission(b, i, utils.AdminPermission) {
				utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
				return
			}
			next(s, i)
		}
	}

	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"punish": requireModerator(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandlePunishCommand(s, i, b)
		}),
		"unpunish": requireModerator(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleUnpunishCommand(s, i, b)
		}),
		"findpunishment": requireModerator(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleFindPunishmentCommand(s, i, b)
		}),
		"quota-config": requireAdmin(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleQuotaConfigCommand(s, i, b)
		}),
		"quota-log": requireModerator(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleQuotaLogCommand(s, i, b)
		}),
		"quota-status": requireModerator(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleQuotaStatusCommand(s, i, b)
		}),
		"system-info": requireAdmin(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i)
		}),
	}
}

func hasPermission(b *bot.Bot, i *discordgo.InteractionCreate, level string) bool {
	if i.Member == nil {
		return false
	}
	serverConfig, ok := b.GetConfig().ServerConfigs[i.GuildID]
	if !ok {
		log.Printf("Could not find server config for guild: %s", i.GuildID)
		return false
	}
	got := utils.CheckPermission(
		i.Member.Roles, i.Member.User.ID,
		serverConfig.AdminRoleIDs, serverConfig.ModeratorRoleIDs,
		b.GetConfig().DeveloperUserIDs,
	)
	switch level {
	case utils.AdminPermission:
		return got == utils.AdminPermission || got == utils.DeveloperPermission
	case utils.ModeratorPermission:
		return got != utils.GuestPermission
	default:
		return true
	}
}

// snapshotOf captures a user's identity for denormalized history records.
func snapshotOf(u *discordgo.User) model.UserSnapshot {
	if u == nil {
		return model.UserSnapshot{}
	}
	name := u.GlobalName
	if name == "" {
		name = u.Username
	}
	return model.UserSnapshot{ID: u.ID, Tag: u.String(), Name: name}
}
