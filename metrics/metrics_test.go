package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithRegistry(registry), WithNamespace("test"))

		Convey("When a generation is observed", func() {
			m.ObserveGeneration(OutcomeSuccess, 150*time.Millisecond)
			m.ObserveGeneration(OutcomeAlreadyGenerated, time.Millisecond)
			m.SetEligible(2024, 12)
			m.AddAwardsCreated(11)

			Convey("Then the counters reflect it", func() {
				So(testutil.ToFloat64(m.generations.WithLabelValues(OutcomeSuccess)), ShouldEqual, 1)
				So(testutil.ToFloat64(m.generations.WithLabelValues(OutcomeAlreadyGenerated)), ShouldEqual, 1)
				So(testutil.ToFloat64(m.eligibleCandidates.WithLabelValues("2024")), ShouldEqual, 12)
				So(testutil.ToFloat64(m.awardsCreated), ShouldEqual, 11)
			})
		})

		Convey("When the handler is scraped", func() {
			m.RecordHTTPRequest("/api/awards", http.MethodGet, http.StatusOK, time.Millisecond)
			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then the namespaced series are exposed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(strings.Contains(rec.Body.String(), "test_engine_http_requests_total"), ShouldBeTrue)
			})
		})
	})

	Convey("Given a nil manager", t, func() {
		var m *Manager

		Convey("Then recording is a no-op", func() {
			So(func() {
				m.ObserveGeneration(OutcomeError, time.Second)
				m.SetEligible(2024, 1)
				m.AddAwardsCreated(3)
				m.RecordCacheLookup(true)
				m.RecordScoreEvent("addition")
				m.RecordHTTPRequest("/", http.MethodGet, 200, 0)
			}, ShouldNotPanic)
			So(m.Registry(), ShouldBeNil)
		})
	})
}
