package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"mod-helper/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables and config.yaml.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, lifecycle notifications will be disabled")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/moderation.db"
	}

	cfg := &model.Config{
		BotToken:         token,
		AppID:            appID,
		LogChannelID:     logChannelID,
		DBPath:           dbPath,
		DeveloperUserIDs: splitIDs(os.Getenv("DEVELOPER_USER_IDS")),
		Scheduler: model.SchedulerConfig{
			ExpirationIntervalSeconds: 60,
			QuotaResetIntervalSeconds: 300,
		},
		ServerConfigs: make(map[string]model.ServerConfig),
	}

	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigFile reads config.yaml (server list, scheduler intervals) via viper.
func loadConfigFile(cfg *model.Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")
	v.AddConfigPath(".")

	v.SetDefault("scheduler.expiration_interval_seconds", cfg.Scheduler.ExpirationIntervalSeconds)
	v.SetDefault("scheduler.quota_reset_interval_seconds", cfg.Scheduler.QuotaResetIntervalSeconds)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: config.yaml not found, no guilds enabled")
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := v.UnmarshalKey("scheduler", &cfg.Scheduler); err != nil {
		return fmt.Errorf("failed to parse scheduler config: %w", err)
	}

	var servers []model.ServerConfig
	if err := v.UnmarshalKey("servers", &servers); err != nil {
		return fmt.Errorf("failed to parse server configs: %w", err)
	}
	for _, sc := range servers {
		if sc.GuildID == "" {
			log.Printf("Warning: server config %q has no guild_id, skipping", sc.Name)
			continue
		}
		cfg.ServerConfigs[sc.GuildID] = sc
	}

	return nil
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
