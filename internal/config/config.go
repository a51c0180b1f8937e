package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort       string        `mapstructure:"SERVER_PORT"`
	TracksCSV        string        `mapstructure:"TRACKS_CSV"`
	CredentialsPath  string        `mapstructure:"CREDENTIALS_PATH"`
	RaceTickInterval time.Duration `mapstructure:"RACE_TICK_INTERVAL"`
	AuthRequired     bool          `mapstructure:"AUTH_REQUIRED"`
	PreauthorizedReg bool          `mapstructure:"REGISTRATION_PREAUTHORIZED"`
	PostgresURL      string        `mapstructure:"POSTGRES_URL"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("TRACKS_CSV", "2018_F1_race_tracks.csv")
	v.SetDefault("CREDENTIALS_PATH", "config.yaml")
	v.SetDefault("RACE_TICK_INTERVAL", 7*time.Second)
	v.SetDefault("AUTH_REQUIRED", false)
	v.SetDefault("REGISTRATION_PREAUTHORIZED", false)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}
