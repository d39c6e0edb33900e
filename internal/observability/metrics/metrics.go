package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadtrack_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leadtrack_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "leadtrack_http_requests_in_flight",
		Help: "API requests currently being served",
	})

	reportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leadtrack_report_duration_seconds",
		Help:    "Duration of report generation",
		Buckets: prometheus.DefBuckets,
	}, []string{"report", "timeframe"})

	reportCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadtrack_report_cache_lookups_total",
		Help: "Overview cache lookups by result",
	}, []string{"result"})

	followUpTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadtrack_followup_transitions_total",
		Help: "Follow-up status changes",
	}, []string{"from", "to"})

	leadsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadtrack_leads_created_total",
		Help: "Leads added",
	})

	authzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadtrack_authorization_denials_total",
		Help: "Refused authorization checks by role and reason",
	}, []string{"role", "reason"})

	backlogPending = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "leadtrack_followups_pending",
		Help: "Pending follow-ups per organization",
	}, []string{"organization"})

	backlogOverdue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "leadtrack_followups_overdue",
		Help: "Pending follow-ups scheduled before today, per organization",
	}, []string{"organization"})

	sessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadtrack_sessions_swept_total",
		Help: "Expired in-process sessions removed",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveReport records how long a report took to build
func ObserveReport(report, timeframe string, duration time.Duration) {
	reportDuration.WithLabelValues(report, timeframe).Observe(duration.Seconds())
}

// ObserveReportCache counts overview cache hits and misses
func ObserveReportCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	reportCacheLookups.WithLabelValues(result).Inc()
}

// ObserveFollowUpTransition counts a status change
func ObserveFollowUpTransition(from, to string) {
	followUpTransitions.WithLabelValues(from, to).Inc()
}

// IncLeadsCreated counts a new lead
func IncLeadsCreated() {
	leadsCreated.Inc()
}

// ObserveAuthzDenial counts a refused permission or scope check
func ObserveAuthzDenial(role, reason string) {
	authzDenials.WithLabelValues(role, reason).Inc()
}

// SetBacklog publishes the follow-up backlog of one organization
func SetBacklog(organization string, pending, overdue int) {
	backlogPending.WithLabelValues(organization).Set(float64(pending))
	backlogOverdue.WithLabelValues(organization).Set(float64(overdue))
}

// ObserveSessionsSwept counts removed sessions
func ObserveSessionsSwept(n int) {
	if n > 0 {
		sessionsSwept.Add(float64(n))
	}
}
