package config

import (
	"time"

	"github.com/spf13/viper"
)

// ServiceConfig holds all configuration for the offline engine.
type ServiceConfig struct {
	Port   string
	AppEnv string

	// DBPath is the sqlite file backing the local store.
	DBPath string

	// SyncEndpoint receives one pending session per POST; 2xx is the only ack.
	SyncEndpoint string
	SyncTimeout  time.Duration

	ProbeInterval time.Duration

	// RetentionMaxAge is the maximum age of cached routes, places and tiles.
	RetentionMaxAge   time.Duration
	RetentionInterval time.Duration

	// SyncedSessionRetention of zero keeps synced sessions forever.
	SyncedSessionRetention time.Duration
}

// Load reads configuration from AMBLE_-prefixed environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("AMBLE")
	v.AutomaticEnv()

	v.SetDefault("PORT", ":8090")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_PATH", "amble-offline.db")
	v.SetDefault("SYNC_ENDPOINT", "http://localhost:8080/api/v1/sessions/sync")
	v.SetDefault("SYNC_TIMEOUT", 10*time.Second)
	v.SetDefault("PROBE_INTERVAL", 30*time.Second)
	v.SetDefault("RETENTION_MAX_AGE", 30*24*time.Hour)
	v.SetDefault("RETENTION_INTERVAL", 6*time.Hour)
	v.SetDefault("SYNCED_SESSION_RETENTION", time.Duration(0))

	return &ServiceConfig{
		Port:                   v.GetString("PORT"),
		AppEnv:                 v.GetString("APP_ENV"),
		DBPath:                 v.GetString("DB_PATH"),
		SyncEndpoint:           v.GetString("SYNC_ENDPOINT"),
		SyncTimeout:            v.GetDuration("SYNC_TIMEOUT"),
		ProbeInterval:          v.GetDuration("PROBE_INTERVAL"),
		RetentionMaxAge:        v.GetDuration("RETENTION_MAX_AGE"),
		RetentionInterval:      v.GetDuration("RETENTION_INTERVAL"),
		SyncedSessionRetention: v.GetDuration("SYNCED_SESSION_RETENTION"),
	}, nil
}
