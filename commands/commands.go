package commands

import (
	"mod-helper/model"

	"github.com/bwmarrin/discordgo"
)

var forwardKindChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Suspend", Value: string(model.KindSuspend)},
	{Name: "Mute", Value: string(model.KindMute)},
	{Name: "Blacklist", Value: string(model.KindBlacklist)},
	{Name: "Modmail Blacklist", Value: string(model.KindModmailBlacklist)},
	{Name: "Warn", Value: string(model.KindWarn)},
	{Name: "Section Suspend", Value: string(model.KindSectionSuspend)},
}

var reversalKindChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Unsuspend", Value: string(model.KindUnsuspend)},
	{Name: "Unmute", Value: string(model.KindUnmute)},
	{Name: "Unblacklist", Value: string(model.KindUnblacklist)},
	{Name: "Modmail Unblacklist", Value: string(model.KindModmailUnblacklist)},
	{Name: "Unwarn", Value: string(model.KindUnwarn)},
	{Name: "Section Unsuspend", Value: string(model.KindSectionUnsuspend)},
}

// Generate builds the slash command set registered for each enabled guild.
func Generate() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "punish",
			Description: "Issues a punishment to a member.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "The punishment to issue.",
					Required:    true,
					Choices:     forwardKindChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "The member to punish.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason for this punishment.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "How long the punishment lasts (e.g. 30m, 12h, 3d). Omit for indefinite.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "evidence",
					Description: "Evidence links, separated by spaces.",
				},
			},
		},
		{
			Name:        "unpunish",
			Description: "Lifts a member's active punishment.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "The reversal to apply.",
					Required:    true,
					Choices:     reversalKindChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "The member to unpunish.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason for lifting the punishment.",
					Required:    true,
				},
			},
		},
		{
			Name:        "findpunishment",
			Description: "Finds punishment information by moderation ID.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "moderation_id",
					Description: "The moderation ID to look up.",
					Required:    true,
				},
			},
		},
		{
			Name:        "quota-config",
			Description: "Configures quotas for designated roles.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset-time",
					Description: "Sets the weekly quota reset day and time.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "day",
							Description: "Day of week (0 = Sunday ... 6 = Saturday).",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "time",
							Description: "Time of day, formatted hh:mm (e.g. 17:30).",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Creates or updates a role's quota.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role this quota applies to.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "points",
							Description: "Minimum points needed to pass the weekly quota.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "Channel for the quota leaderboard.",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Removes a role's quota configuration.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role whose quota to remove.",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add-rule",
					Description: "Sets the point value for an activity.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The quota role.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "activity",
							Description: "The activity (e.g. RunComplete, Parse).",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "points",
							Description: "Points per occurrence.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "variant",
							Description: "Specific variant (e.g. a dungeon ID). Omit for all variants.",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove-rule",
					Description: "Removes an activity's point rule.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The quota role.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "activity",
							Description: "The activity of the rule.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "variant",
							Description: "Specific variant of the rule, if any.",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Resets a role's quota immediately.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role whose quota to reset.",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "quota-log",
			Description: "Credits an activity toward a role's quota.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The quota role.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "activity",
					Description: "The activity performed.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "The member who performed it. Defaults to you.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "variant",
					Description: "Specific variant of the activity, if any.",
				},
			},
		},
		{
			Name:        "quota-status",
			Description: "Shows a role's running quota total.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The quota role.",
					Required:    true,
				},
			},
		},
		{
			Name:        "system-info",
			Description: "Shows host and process statistics.",
		},
	}
}
