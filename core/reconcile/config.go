package reconcile

import "time"

// Config holds the policy values of the strategy selector and the executor.
// Zero values fall back to the defaults listed in the struct tags.
type Config struct {
	// OwnerID is the user whose games are reconciled.
	OwnerID string `mapstructure:"owner_id" default:""`

	// MaxConcurrency limits concurrent network operations across all classes.
	MaxConcurrency int `mapstructure:"max_concurrency" default:"3"`

	// DownloadBatchSize is the number of downloads started together.
	DownloadBatchSize int `mapstructure:"download_batch_size" default:"5"`

	// BatchStagger delays batch i by i times this value.
	BatchStagger time.Duration `mapstructure:"batch_stagger" default:"1s"`

	// ItemTimeout bounds each download or upload.
	ItemTimeout time.Duration `mapstructure:"item_timeout" default:"45s"`

	// FailureThreshold is the failure ratio at or above which a cycle is Failed instead of Partial.
	FailureThreshold float64 `mapstructure:"failure_threshold" default:"0.5"`

	// EnhancedIncremental sends the full summary along with incremental changes.
	EnhancedIncremental bool `mapstructure:"enhanced_incremental" default:"true"`

	// ArchiveReports stores every cycle report in object storage.
	ArchiveReports bool `mapstructure:"archive_reports" default:"false"`

	LaunchSkipWindow     time.Duration `mapstructure:"launch_skip_window" default:"30m"`
	LaunchFullEvery      int           `mapstructure:"launch_full_every" default:"10"`
	LaunchDeferDelay     time.Duration `mapstructure:"launch_defer_delay" default:"3s"`
	LoginRecentWindow    time.Duration `mapstructure:"login_recent_window" default:"5m"`
	LoginRecentDelay     time.Duration `mapstructure:"login_recent_delay" default:"2s"`
	LoginStaleDelay      time.Duration `mapstructure:"login_stale_delay" default:"5s"`
	CompletionSkipWindow time.Duration `mapstructure:"completion_skip_window" default:"60s"`
	ManualRecentWindow   time.Duration `mapstructure:"manual_recent_window" default:"60s"`
	BackgroundSkipWindow time.Duration `mapstructure:"background_skip_window" default:"1h"`
}

// DefaultConfig returns the default policy.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency:       3,
		DownloadBatchSize:    5,
		BatchStagger:         time.Second,
		ItemTimeout:          45 * time.Second,
		FailureThreshold:     0.5,
		EnhancedIncremental:  true,
		LaunchSkipWindow:     30 * time.Minute,
		LaunchFullEvery:      10,
		LaunchDeferDelay:     3 * time.Second,
		LoginRecentWindow:    5 * time.Minute,
		LoginRecentDelay:     2 * time.Second,
		LoginStaleDelay:      5 * time.Second,
		CompletionSkipWindow: 60 * time.Second,
		ManualRecentWindow:   60 * time.Second,
		BackgroundSkipWindow: time.Hour,
	}
}

// withDefaults replaces non-positive values with defaults. BatchStagger may be zero.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
	if c.DownloadBatchSize <= 0 {
		c.DownloadBatchSize = d.DownloadBatchSize
	}
	if c.BatchStagger < 0 {
		c.BatchStagger = d.BatchStagger
	}
	if c.ItemTimeout <= 0 {
		c.ItemTimeout = d.ItemTimeout
	}
	if c.FailureThreshold <= 0 || c.FailureThreshold > 1 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.LaunchSkipWindow <= 0 {
		c.LaunchSkipWindow = d.LaunchSkipWindow
	}
	if c.LaunchFullEvery <= 0 {
		c.LaunchFullEvery = d.LaunchFullEvery
	}
	if c.LaunchDeferDelay <= 0 {
		c.LaunchDeferDelay = d.LaunchDeferDelay
	}
	if c.LoginRecentWindow <= 0 {
		c.LoginRecentWindow = d.LoginRecentWindow
	}
	if c.LoginRecentDelay <= 0 {
		c.LoginRecentDelay = d.LoginRecentDelay
	}
	if c.LoginStaleDelay <= 0 {
		c.LoginStaleDelay = d.LoginStaleDelay
	}
	if c.CompletionSkipWindow <= 0 {
		c.CompletionSkipWindow = d.CompletionSkipWindow
	}
	if c.ManualRecentWindow <= 0 {
		c.ManualRecentWindow = d.ManualRecentWindow
	}
	if c.BackgroundSkipWindow <= 0 {
		c.BackgroundSkipWindow = d.BackgroundSkipWindow
	}
	return c
}
