package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics tracks the refresh cascade and workflow transitions.
type BookingMetrics struct {
	refresh     *prometheus.HistogramVec
	failures    *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	refresh := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "discope_booking_refresh_duration_seconds",
		Help:    "Duration of booking refresh cascades.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"scope"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discope_booking_refresh_failures_total",
		Help: "Refresh cascades aborted by a business or storage error.",
	}, []string{"scope"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discope_booking_transitions_total",
		Help: "Booking status transitions by target status.",
	}, []string{"status"})
	reg.MustRegister(refresh, failures, transitions)
	return &BookingMetrics{refresh: refresh, failures: failures, transitions: transitions}
}

// ObserveRefresh records one cascade run.
func (m *BookingMetrics) ObserveRefresh(scope string, duration time.Duration, err error) {
	if m == nil || m.refresh == nil {
		return
	}
	scope = normalizeLabel(scope)
	m.refresh.WithLabelValues(scope).Observe(duration.Seconds())
	if err != nil {
		m.failures.WithLabelValues(scope).Inc()
	}
}

// IncTransition counts a transition into status.
func (m *BookingMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}
