package event

import "time"

// Config holds the NATS JetStream settings for cycle events.
type Config struct {
	// URL of the NATS server. Empty disables publishing.
	URL string `mapstructure:"url" default:""`
	// Stream is created on startup when missing.
	Stream string `mapstructure:"stream" default:"CRYPTOGRAM_SYNC"`
	// Subject prefix; events go to "<subject>.<outcome>".
	Subject string `mapstructure:"subject" default:"cryptogram.sync.cycles"`
	// MaxAge bounds how long the stream keeps events.
	MaxAge time.Duration `mapstructure:"max_age" default:"24h"`
	// ConnectTimeout bounds the initial connection attempt.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" default:"2s"`
}
