package protocol

import "time"

// Config holds configuration for the sync server client.
type Config struct {
	// BaseURL is the root URL of the sync server, without a trailing slash.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:8080"`
	// PlanTimeout bounds a reconcile plan request.
	PlanTimeout time.Duration `mapstructure:"plan_timeout" default:"120s"`
	// ItemTimeout bounds a single game download or upload.
	ItemTimeout time.Duration `mapstructure:"item_timeout" default:"45s"`
	// DialTimeout bounds connection setup.
	DialTimeout time.Duration `mapstructure:"dial_timeout" default:"10s"`
}
