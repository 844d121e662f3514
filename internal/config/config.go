// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers defaults, optional file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxScore is the upper bound for a single criterion score.
	// Scores are validated against the closed interval [0, MaxScore].
	MaxScore float64 `koanf:"max_score"`

	// MinReviewsForOutliers is the minimum review count before
	// outlier analysis runs for an event.
	MinReviewsForOutliers int `koanf:"min_reviews_for_outliers"`

	// OutlierZThreshold is the robust z-score at or above which a
	// review rating is flagged as an outlier.
	OutlierZThreshold float64 `koanf:"outlier_z_threshold"`

	// BroadcastBufferSize bounds each subscriber's notification channel.
	BroadcastBufferSize int `koanf:"broadcast_buffer_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SweepEnabled toggles the scheduled integrity sweep.
	SweepEnabled bool `koanf:"sweep_enabled"`

	// SweepCron is the cron spec for the integrity sweep (5-field, local time).
	SweepCron string `koanf:"sweep_cron"`

	// StateDBPath locates the bbolt file holding round finalization records.
	StateDBPath string `koanf:"state_db_path"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		MaxScore:              10,
		MinReviewsForOutliers: 3,
		OutlierZThreshold:     3.0,
		BroadcastBufferSize:   256,
		MaxLeaderboardLimit:   100,
		SweepEnabled:          false,
		SweepCron:             "*/30 * * * *",
		StateDBPath:           "data/podium-state.db",
	}
}
