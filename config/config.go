/*
config.go - Service configuration

PURPOSE:
  One struct holding everything the server, the CLI and the scheduler need.
  New returns the defaults; Load (loader.go) layers a YAML file and HR_
  environment variables on top.

SEE ALSO:
  - loader.go: Layering and validation
  - cmd/server/main.go: Flag overrides for addr and db
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/warp/hr-engine/award"
)

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite file. ":memory:" keeps everything in process.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is json or console.
	LogFormat string `koanf:"log_format"`

	// AdminPassword unlocks the admin token. Empty disables the gate's
	// verify endpoint.
	AdminPassword string `koanf:"admin_password"`

	// JWTSecret signs admin tokens.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is the lifetime of an admin token.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// VerifyRate limits password attempts, in limiter notation ("5-M").
	VerifyRate string `koanf:"verify_rate"`

	// RedisAddr enables the Redis statistics cache when set.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// CacheTTL bounds how long a cached statistics report lives.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`

	SchedulerEnabled  bool          `koanf:"scheduler_enabled"`
	SchedulerInterval time.Duration `koanf:"scheduler_interval"`

	Award AwardConfig `koanf:"award"`
}

// AwardConfig tunes annual award generation.
type AwardConfig struct {
	// ScoreSource is lifetime or yearly.
	ScoreSource string `koanf:"score_source"`

	// Tiers overrides the default 1/2/3/5 quota table.
	Tiers award.TierTable `koanf:"tiers"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		Addr:              ":8080",
		DBPath:            "hr.db",
		LogLevel:          "info",
		LogFormat:         "json",
		JWTSecret:         "change-me",
		TokenTTL:          2 * time.Hour,
		VerifyRate:        "5-M",
		CacheTTL:          5 * time.Minute,
		SchedulerEnabled:  true,
		SchedulerInterval: time.Hour,
		Award: AwardConfig{
			ScoreSource: string(award.ScoreSourceLifetime),
		},
	}
}

// DefaultCORSOrigins is used when no origin is configured.
var DefaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.TokenTTL <= 0:
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	case c.CacheTTL <= 0:
		return fmt.Errorf("%w: cache_ttl must be positive", ErrInvalidConfig)
	case c.SchedulerInterval <= 0:
		return fmt.Errorf("%w: scheduler_interval must be positive", ErrInvalidConfig)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: jwt_secret must not be empty", ErrInvalidConfig)
	}
	if !award.ScoreSource(c.Award.ScoreSource).Valid() {
		return fmt.Errorf("%w: unknown award.score_source %q", ErrInvalidConfig, c.Award.ScoreSource)
	}
	if err := c.Award.Tiers.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
