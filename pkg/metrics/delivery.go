package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DeliveryMetrics records metadata for the email delivery worker.
type DeliveryMetrics struct {
	duration *prometheus.HistogramVec
	sent     prometheus.Counter
	failed   prometheus.Counter
	retried  prometheus.Counter
	depth    *prometheus.GaugeVec
}

// NewDeliveryMetrics registers the delivery worker metrics on the provided registerer.
func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delivery_batch_duration_seconds",
		Help:    "Duration of delivery worker batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	sent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_emails_sent_total",
		Help: "Download link emails sent successfully.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_emails_failed_total",
		Help: "Download link emails that exhausted their attempts.",
	})
	retried := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_emails_retried_total",
		Help: "Download link email attempts that failed and will retry.",
	})
	depth := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "delivery_queue_depth",
		Help: "Delivery tasks currently in each status.",
	}, []string{"status"})
	reg.MustRegister(duration, sent, failed, retried, depth)
	return &DeliveryMetrics{
		duration: duration,
		sent:     sent,
		failed:   failed,
		retried:  retried,
		depth:    depth,
	}
}

// ObserveBatch records the duration of a worker batch stage.
func (d *DeliveryMetrics) ObserveBatch(stage string, duration time.Duration) {
	if d == nil || d.duration == nil {
		return
	}
	d.duration.WithLabelValues(normalizeLabel(stage)).Observe(duration.Seconds())
}

// IncSent increments the sent counter.
func (d *DeliveryMetrics) IncSent() {
	if d == nil || d.sent == nil {
		return
	}
	d.sent.Inc()
}

// IncFailed increments the permanently-failed counter.
func (d *DeliveryMetrics) IncFailed() {
	if d == nil || d.failed == nil {
		return
	}
	d.failed.Inc()
}

// SetQueueDepth records the number of tasks sitting in the given status.
func (d *DeliveryMetrics) SetQueueDepth(status string, depth int64) {
	if d == nil || d.depth == nil {
		return
	}
	d.depth.WithLabelValues(normalizeLabel(status)).Set(float64(depth))
}

// IncRetried increments the retry counter.
func (d *DeliveryMetrics) IncRetried() {
	if d == nil || d.retried == nil {
		return
	}
	d.retried.Inc()
}
