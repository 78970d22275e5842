package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Domain counters for the comment trust boundary.
var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkstone_submissions_total",
			Help: "Inbound submissions by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	ModerationActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkstone_moderation_actions_total",
			Help: "Applied moderation actions by action name.",
		},
		[]string{"action"},
	)

	RateLimitDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkstone_rate_limit_denials_total",
			Help: "Denied submissions by rate-limit dimension.",
		},
		[]string{"dimension"},
	)

	RateLimitStoreErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inkstone_rate_limit_store_errors_total",
			Help: "Counter store failures that caused a fail-open check.",
		},
	)

	ContentFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inkstone_content_fallbacks_total",
			Help: "Content index reads served by the static fallback.",
		},
	)
)

// Init registers the counters with the default registry.
func Init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		ModerationActionsTotal,
		RateLimitDenialsTotal,
		RateLimitStoreErrors,
		ContentFallbacksTotal,
	)
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
