package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("feedback"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.submissions.WithLabelValues("success").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "test_feedback_feedback_submissions_total")
			})
		})

		Convey("When empty options are passed", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "harkwise")
				So(m.subsystem, ShouldEqual, "userapp")
				So(m.histogramBuckets, ShouldResemble, defaultBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording submission outcomes", func() {
			before := testutil.ToFloat64(globalManager.submissions.WithLabelValues("error"))
			RecordSubmission("error")
			RecordSubmission("error")

			Convey("Then the counter moves", func() {
				So(testutil.ToFloat64(globalManager.submissions.WithLabelValues("error")), ShouldEqual, before+2)
			})
		})

		Convey("When recording ratings and rejections", func() {
			before := testutil.ToFloat64(globalManager.ratings.WithLabelValues("5"))
			RecordRating(5)
			RecordValidationRejection()

			Convey("Then the rating label is the star value", func() {
				So(testutil.ToFloat64(globalManager.ratings.WithLabelValues("5")), ShouldEqual, before+1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateSessionsActive(7)

			Convey("Then the gauge holds the last value", func() {
				So(testutil.ToFloat64(globalManager.sessionsActive), ShouldEqual, 7)
			})
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				RecordBackendDuration("success", 12.5)
				RecordSessionEvicted("idle")
				RecordHTTPRequest("form", "GET", "200")
				RecordHTTPRequestDuration("form", "GET", "200", 3)
				RecordErrorByEndpoint("submit", "POST", "client_error")
				RecordErrorByType("client_error", "medium")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("Then the registry is the custom one", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
