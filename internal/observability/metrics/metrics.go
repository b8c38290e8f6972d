package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the intake flow.
type IntakeMetrics struct {
	zoneChecksTotal   *prometheus.CounterVec
	slotSearchesTotal *prometheus.CounterVec
	submissionsTotal  *prometheus.CounterVec
	searchLatency     *prometheus.HistogramVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		zoneChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homevet",
			Subsystem: "intake",
			Name:      "zone_checks_total",
			Help:      "Total resolved zone checks",
		}, []string{"result"}),
		slotSearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homevet",
			Subsystem: "intake",
			Name:      "slot_searches_total",
			Help:      "Total slot searches issued",
		}, []string{"status"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homevet",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Total appointment requests submitted",
		}, []string{"flow", "manual"}),
		searchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "homevet",
			Subsystem: "intake",
			Name:      "slot_search_latency_seconds",
			Help:      "Latency of scheduling backend slot searches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.zoneChecksTotal, m.slotSearchesTotal, m.submissionsTotal, m.searchLatency)
	return m
}

func (m *IntakeMetrics) ObserveZoneCheck(result string) {
	if m == nil {
		return
	}
	m.zoneChecksTotal.WithLabelValues(result).Inc()
}

func (m *IntakeMetrics) ObserveSlotSearch(status string, seconds float64) {
	if m == nil {
		return
	}
	m.slotSearchesTotal.WithLabelValues(status).Inc()
	m.searchLatency.WithLabelValues(status).Observe(seconds)
}

func (m *IntakeMetrics) ObserveSubmission(flow string, manual bool) {
	if m == nil {
		return
	}
	label := "false"
	if manual {
		label = "true"
	}
	m.submissionsTotal.WithLabelValues(flow, label).Inc()
}
