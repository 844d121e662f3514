package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/podium/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MaxScore, convey.ShouldEqual, 10)
				convey.So(cfg.MinReviewsForOutliers, convey.ShouldEqual, 3)
				convey.So(cfg.OutlierZThreshold, convey.ShouldEqual, 3.0)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PODIUM_ADDR", ":8080")
			_ = os.Setenv("PODIUM_MAX_SCORE", "100")
			_ = os.Setenv("PODIUM_MIN_REVIEWS_FOR_OUTLIERS", "5")
			_ = os.Setenv("PODIUM_OUTLIER_Z_THRESHOLD", "2.5")
			_ = os.Setenv("PODIUM_SWEEP_ENABLED", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxScore, convey.ShouldEqual, 100)
				convey.So(cfg.MinReviewsForOutliers, convey.ShouldEqual, 5)
				convey.So(cfg.OutlierZThreshold, convey.ShouldEqual, 2.5)
				convey.So(cfg.SweepEnabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
max_score: 5
min_reviews_for_outliers: 4
outlier_z_threshold: 3.5
sweep_cron: "0 * * * *"
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MaxScore, convey.ShouldEqual, 5)
				convey.So(cfg.MinReviewsForOutliers, convey.ShouldEqual, 4)
				convey.So(cfg.OutlierZThreshold, convey.ShouldEqual, 3.5)
				convey.So(cfg.SweepCron, convey.ShouldEqual, "0 * * * *")
			})
		})

		convey.Convey("When the config is invalid", func() {
			_ = os.Setenv("PODIUM_ADDR", "")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr")
			})
		})

		convey.Convey("When max_score is not positive", func() {
			_ = os.Setenv("PODIUM_MAX_SCORE", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"PODIUM_CONFIG",
		"PODIUM_ADDR",
		"PODIUM_MAX_SCORE",
		"PODIUM_MIN_REVIEWS_FOR_OUTLIERS",
		"PODIUM_OUTLIER_Z_THRESHOLD",
		"PODIUM_SWEEP_ENABLED",
		"PODIUM_SWEEP_CRON",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "podium.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}
