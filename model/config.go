package model

// ServerConfig 定义了每个服务器的配置
type ServerConfig struct {
	Name             string   `mapstructure:"name" json:"name"`
	GuildID          string   `mapstructure:"guild_id" json:"guild_id"`
	Enable           bool     `mapstructure:"enable" json:"enable"`
	AdminRoleIDs     []string `mapstructure:"admin_role_ids" json:"admin_role_ids"`
	ModeratorRoleIDs []string `mapstructure:"moderator_role_ids" json:"moderator_role_ids"`
}

// SchedulerConfig 定义了后台扫描任务的间隔（秒）
type SchedulerConfig struct {
	ExpirationIntervalSeconds int `mapstructure:"expiration_interval_seconds" json:"expiration_interval_seconds"`
	QuotaResetIntervalSeconds int `mapstructure:"quota_reset_interval_seconds" json:"quota_reset_interval_seconds"`
}

// Config 存储应用程序的配置
type Config struct {
	BotToken         string
	AppID            string
	LogChannelID     string
	DBPath           string
	DeveloperUserIDs []string
	Scheduler        SchedulerConfig
	ServerConfigs    map[string]ServerConfig
}
