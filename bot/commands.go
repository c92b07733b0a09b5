package bot

import (
	"log"

	"mod-helper/commands"
)

// RefreshCommands overwrites the slash command set for a guild.
func (b *Bot) RefreshCommands(guildID string) {
	cmds := commands.Generate()
	log.Printf("Registering %d commands for guild %s...", len(cmds), guildID)
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registered...)
}
