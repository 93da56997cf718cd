// Package metrics defines the Prometheus collectors of the booking service.
// A nil *Metrics is valid and records nothing, so tests and callers that
// run with METRICS_ENABLED=false need no special casing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	bookingAttempts *prometheus.CounterVec
	attendance      *prometheus.CounterVec
	absencesMarked  prometheus.Counter
	sweepRuns       *prometheus.CounterVec
	paymentDecided  *prometheus.CounterVec
}

// New registers the collectors on a private registry together with the
// Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bookingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_seat_booking_attempts_total",
			Help: "Seat booking attempts by result.",
		}, []string{"shift", "result"}),
		attendance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_attendance_events_total",
			Help: "Check-in and check-out attempts by result.",
		}, []string{"action", "shift", "result"}),
		absencesMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_absences_marked_total",
			Help: "Absence rows upserted by the sweep.",
		}),
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_absence_sweeps_total",
			Help: "Absence sweep runs by trigger and result.",
		}, []string{"trigger", "result"}),
		paymentDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_payment_decisions_total",
			Help: "Payment approvals and rejections.",
		}, []string{"decision"}),
	}
	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.bookingAttempts, m.attendance, m.absencesMarked, m.sweepRuns, m.paymentDecided,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) BookingAttempt(shift, result string) {
	if m == nil {
		return
	}
	m.bookingAttempts.WithLabelValues(shift, result).Inc()
}

func (m *Metrics) Attendance(action, shift, result string) {
	if m == nil {
		return
	}
	m.attendance.WithLabelValues(action, shift, result).Inc()
}

func (m *Metrics) AbsencesMarked(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.absencesMarked.Add(float64(n))
}

func (m *Metrics) SweepRun(trigger, result string) {
	if m == nil {
		return
	}
	m.sweepRuns.WithLabelValues(trigger, result).Inc()
}

func (m *Metrics) PaymentDecided(decision string) {
	if m == nil {
		return
	}
	m.paymentDecided.WithLabelValues(decision).Inc()
}

// Result maps an error to a short label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
