package main

import (
	"log"
	"os"
	"path/filepath"

	"mod-helper/bot"
	"mod-helper/config"
	"mod-helper/handlers"
	"mod-helper/utils/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	db, err := database.Init(cfg.DBPath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Known guilds get tenant records up front so the schedulers see them.
	for guildID := range cfg.ServerConfigs {
		if _, err := database.GetOrCreateTenant(db, guildID); err != nil {
			log.Fatalf("Error creating tenant record for guild %s: %v", guildID, err)
		}
	}

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
