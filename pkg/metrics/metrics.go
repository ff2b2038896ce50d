// Package metrics exposes feeder activity to Prometheus.
package metrics

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/petwant.go/pkg/device"
	"github.com/robotalks/petwant.go/pkg/framework"
)

// NewRegistry creates a registry with the process and Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// DeviceMetrics counts device events.
type DeviceMetrics struct {
	Events           *prometheus.CounterVec // labels: kind
	ClockDrift       prometheus.Gauge
	Revolutions      prometheus.Counter
	LongPressSeconds prometheus.Histogram

	// Clock is used to compute the drift, defaults to the system clock.
	Clock framework.TimeSource
}

// NewDeviceMetrics registers and returns the device metrics.
func NewDeviceMetrics(reg prometheus.Registerer) *DeviceMetrics {
	m := &DeviceMetrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "petwant_events_total",
			Help: "Device events by kind.",
		}, []string{"kind"}),
		ClockDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "petwant_clock_drift_seconds",
			Help: "Local time minus feeder time when the feeder last reported its clock.",
		}),
		Revolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "petwant_motor_revolutions_total",
			Help: "Motor revolutions reported by completed feedings.",
		}),
		LongPressSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "petwant_button_long_press_seconds",
			Help:    "Duration of long button presses.",
			Buckets: []float64{3, 5, 10, 30},
		}),
		Clock: framework.SystemClock,
	}
	reg.MustRegister(m.Events, m.ClockDrift, m.Revolutions, m.LongPressSeconds)
	for _, kind := range device.EventKinds() {
		m.Events.WithLabelValues(kind.String())
	}
	return m
}

// HandleEvent implements device.EventHandler.
func (m *DeviceMetrics) HandleEvent(ctx context.Context, ev *device.Event) {
	m.Events.WithLabelValues(ev.Kind.String()).Inc()
	switch ev.Kind {
	case device.EventDateTimeUTC:
		m.ClockDrift.Set(m.Clock.Time().Sub(ev.Time).Seconds())
	case device.EventFeedingComplete:
		m.Revolutions.Add(float64(ev.Revolutions))
	case device.EventButtonLongPress:
		m.LongPressSeconds.Observe(ev.Elapsed.Seconds())
	}
}

// Server serves the metrics over HTTP.
type Server struct {
	Addr    string
	Handler http.Handler
}

// Name implements framework.Named.
func (s *Server) Name() string {
	return "metrics"
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Handler)
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	glog.Infof("metrics listening on %s", s.Addr)
	return framework.RunWithContextCloser(ctx, srv, func() error {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}
