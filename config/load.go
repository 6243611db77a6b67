package config

import (
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Load reads config.yaml if present, with env vars taking precedence
// (APP_DATABASE_URL overrides database_url, etc).
func Load() App {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("env", "dev")
	v.SetDefault("jwt_secret", "local_dev_secret")
	v.SetDefault("overdue_sweep_spec", "@daily")
	v.SetDefault("late_return_sweep_spec", "@daily")
	v.SetDefault("suspension_sweep_spec", "@daily")
	v.SetDefault("inactivity_sweep_spec", "@weekly")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file unreadable, using env/defaults", "err", err)
		}
	}

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("config unmarshal failed", "err", err)
		panic(err)
	}
	if cfg.DatabaseURL == "" {
		slog.Error("required config missing", "key", "database_url")
		panic("missing database_url")
	}
	return cfg
}
