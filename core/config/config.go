package config

import (
	"errors"
	"reflect"
	"strings"

	"cryptogram-sync/core/auth"
	"cryptogram-sync/core/database"
	"cryptogram-sync/core/event"
	"cryptogram-sync/core/logger"
	"cryptogram-sync/core/protocol"
	"cryptogram-sync/core/reconcile"
	"cryptogram-sync/core/server"
	"cryptogram-sync/core/storage"
	"cryptogram-sync/core/telemetry"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP control server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the local game store.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the diagnostics archive.
	Storage storage.Config `mapstructure:"storage"`
	// Remote holds configuration for the sync server client.
	Remote protocol.Config `mapstructure:"remote"`
	// Auth holds the sync server credentials.
	Auth auth.Config `mapstructure:"auth"`
	// Sync holds the reconciliation policy.
	Sync reconcile.Config `mapstructure:"sync"`
	// Events holds configuration for cycle event publishing.
	Events event.Config `mapstructure:"events"`
	// Telemetry holds tracing configuration.
	Telemetry telemetry.Config `mapstructure:"telemetry"`
}

// ErrMissingOwner is returned by RequireOwner when SYNC_OWNER_ID is not set.
var ErrMissingOwner = errors.New("sync.owner_id (SYNC_OWNER_ID) is required")

// RequireOwner checks the settings needed to run reconciliation cycles.
func (c *Config) RequireOwner() error {
	if strings.TrimSpace(c.Sync.OwnerID) == "" {
		return ErrMissingOwner
	}
	return nil
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SYNC_OWNER_ID -> sync.owner_id)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
