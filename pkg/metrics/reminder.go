package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReminderMetrics tracks the reminder pipeline: scheduled jobs, fires,
// per-device deliveries and summary generation.
type ReminderMetrics struct {
	activeJobs       prometheus.Gauge
	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	deliveries       *prometheus.CounterVec
	pruned           prometheus.Counter
	summaries        *prometheus.CounterVec
}

// NewReminderMetrics registers the reminder metrics on reg. A nil registerer
// yields a no-op instance.
func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	if reg == nil {
		return &ReminderMetrics{}
	}
	m := &ReminderMetrics{
		activeJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reminder_active_jobs",
			Help: "Recurring reminder jobs currently installed.",
		}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_dispatch_total",
			Help: "Reminder fires by terminal outcome.",
		}, []string{"outcome"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reminder_dispatch_duration_seconds",
			Help:    "Duration of a reminder fire in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_delivery_total",
			Help: "Per-device push delivery attempts by outcome.",
		}, []string{"outcome"}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_pruned_tokens_total",
			Help: "Device tokens removed after the push service reported them unregistered.",
		}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "summary_generation_total",
			Help: "Summary generations by source (model, fallback, empty).",
		}, []string{"source"}),
	}
	reg.MustRegister(m.activeJobs, m.dispatches, m.dispatchDuration, m.deliveries, m.pruned, m.summaries)
	return m
}

func (m *ReminderMetrics) SetActiveJobs(n int) {
	if m == nil || m.activeJobs == nil {
		return
	}
	m.activeJobs.Set(float64(n))
}

// ObserveDispatch records one finished fire.
func (m *ReminderMetrics) ObserveDispatch(outcome string, duration time.Duration) {
	if m == nil || m.dispatches == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.dispatches.WithLabelValues(outcome).Inc()
	m.dispatchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *ReminderMetrics) IncDelivery(outcome string) {
	if m == nil || m.deliveries == nil {
		return
	}
	m.deliveries.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *ReminderMetrics) AddPruned(n int) {
	if m == nil || m.pruned == nil || n <= 0 {
		return
	}
	m.pruned.Add(float64(n))
}

func (m *ReminderMetrics) IncSummary(source string) {
	if m == nil || m.summaries == nil {
		return
	}
	m.summaries.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
