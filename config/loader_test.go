package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TokenTTL, convey.ShouldEqual, 2*time.Hour)
				convey.So(cfg.VerifyRate, convey.ShouldEqual, "5-M")
				convey.So(cfg.Award.ScoreSource, convey.ShouldEqual, "lifetime")
				convey.So(cfg.Award.Tiers, convey.ShouldResemble, award.DefaultTierTable())
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, config.DefaultCORSOrigins)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("HR_ADDR", ":9000")
			t.Setenv("HR_DB_PATH", ":memory:")
			t.Setenv("HR_CACHE_TTL", "30s")
			t.Setenv("HR_SCHEDULER_ENABLED", "false")
			t.Setenv("HR_AWARD_SCORE_SOURCE", "yearly")

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.DBPath, convey.ShouldEqual, ":memory:")
				convey.So(cfg.CacheTTL, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.SchedulerEnabled, convey.ShouldBeFalse)
				convey.So(cfg.Award.ScoreSource, convey.ShouldEqual, "yearly")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := writeConfigFile(t, `
addr: ":7070"
log_format: console
award:
  tiers:
    - level: special
      quota: 2
      bonus: 8000
    - level: excellent
      quota: 4
      bonus: 500
`)
			t.Setenv("HR_CONFIG", path)

			cfg, err := config.Load()

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "console")
				convey.So(cfg.Award.Tiers, convey.ShouldResemble, award.TierTable{
					{Level: award.LevelSpecial, Quota: 2, Bonus: 8000},
					{Level: award.LevelExcellent, Quota: 4, Bonus: 500},
				})
			})
		})

		convey.Convey("When the tier table is out of order", func() {
			path := writeConfigFile(t, `
award:
  tiers:
    - level: first
      quota: 1
      bonus: 100
    - level: special
      quota: 1
      bonus: 200
`)
			t.Setenv("HR_CONFIG", path)

			_, err := config.Load()

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, award.ErrInvalidTiers), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the score source is unknown", func() {
			t.Setenv("HR_AWARD_SCORE_SOURCE", "monthly")

			_, err := config.Load()

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is missing", func() {
			t.Setenv("HR_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

			_, err := config.Load()

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given the defaults with the default tier table", t, func() {
		cfg := config.New()
		cfg.Award.Tiers = award.DefaultTierTable()

		convey.So(cfg.Validate(), convey.ShouldBeNil)

		convey.Convey("An empty address is rejected", func() {
			cfg.Addr = ""
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A zero scheduler interval is rejected", func() {
			cfg.SchedulerInterval = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hr.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearConfigEnvVars blanks every HR_ variable for the test's duration.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}
}
