package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a metrics manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithRegistry(registry), WithNamespace("test"))

		Convey("When runs start and finish", func() {
			m.RunStarted()
			m.RunStarted()
			m.RunFinished(true, 75)
			m.RunFinished(false, 20)

			Convey("Then the counters follow", func() {
				So(testutil.ToFloat64(m.runsStarted), ShouldEqual, 2)
				So(testutil.ToFloat64(m.runsFinished.WithLabelValues("completed")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.runsFinished.WithLabelValues("stopped")), ShouldEqual, 1)
			})
		})

		Convey("When hits are captured and dropped", func() {
			m.HitCaptured("kick")
			m.HitCaptured("kick")
			m.HitCaptured("38")
			m.HitsDropped(3)
			m.HitsDropped(0)
			m.Tick()

			Convey("Then they are counted by label", func() {
				So(testutil.ToFloat64(m.hitsCaptured.WithLabelValues("kick")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.hitsCaptured.WithLabelValues("38")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.hitsDropped), ShouldEqual, 3)
				So(testutil.ToFloat64(m.ticks), ShouldEqual, 1)
			})
		})

		Convey("When the handler is scraped", func() {
			m.CaptureFailed("unavailable")
			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then it serves the namespaced metrics", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `test_capture_failures_total{reason="unavailable"} 1`)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		m := NewManager(WithMetricsEnabled(false))
		m.RunStarted()

		Convey("Then nothing is recorded", func() {
			So(testutil.ToFloat64(m.runsStarted), ShouldEqual, 0)
		})
	})

	Convey("Given a nil manager", t, func() {
		var m *Manager

		Convey("Then recording is a no-op", func() {
			So(func() {
				m.RunStarted()
				m.RunFinished(true, 100)
				m.Tick()
				m.HitCaptured("kick")
				m.HitsDropped(1)
				m.CaptureFailed("x")
			}, ShouldNotPanic)
		})
	})
}
