package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording business metrics", func() {
			Convey("Then recording should not panic", func() {
				So(func() {
					RecordScoreSubmission()
					RecordScoreSubmitError()
					RecordAggregateLatency(12.5)
					RecordRoundFinalized()
					RecordLeaderboardQuery()
					RecordLeaderboardQueryLatency(3.0)
					RecordLeaderboardBroadcast()
					RecordReviewUpsert()
					RecordReviewFlag("outlier_rating")
					RecordReviewFlag("invalid_user")
					RecordFlagAnalysisRun()
					RecordFlagAnalysisError()
					RecordFlagAnalysisLatency(8.0)
					RecordBroadcastPublished()
					RecordBroadcastDropped()
					UpdateBroadcastSubscribers(3)
					RecordSweepRun()
					RecordSweepError()
					UpdateTotalSubmissions(10)
					UpdateTotalReviews(25)
					RecordRepositoryUpdateLatency(1.0)
					RecordRepositoryQueryLatency(0.5)
					RecordHTTPRequest("scores", "POST", "200")
					RecordHTTPRequestDuration("scores", "POST", "200", 4.2)
					RecordErrorByComponent("integrity", "analysis_failed")
					RecordErrorByEndpoint("reviews", "POST", "client_error")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(42)
				}, ShouldNotPanic)
			})
		})

		Convey("When fetching the registry", func() {
			Convey("Then it should be non-nil", func() {
				So(GetRegistry(), ShouldNotBeNil)
			})
		})
	})
}
