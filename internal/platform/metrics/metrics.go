package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsCreated    prometheus.Counter
	ReferralsProcessed      prometheus.Counter
	InvitesSent             prometheus.Counter
	StoreFailures           prometheus.Counter
	FallbackClassifications prometheus.Counter
	QuotaRejections         prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guestgate_registrations_created_total",
			Help: "Total number of new registrant records created",
		}),
		ReferralsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guestgate_referrals_processed_total",
			Help: "Total number of guest referrals accepted",
		}),
		InvitesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guestgate_invites_sent_total",
			Help: "Total number of outbound invite messages handed to the provider",
		}),
		StoreFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guestgate_store_failures_total",
			Help: "Total number of remote record store failures",
		}),
		FallbackClassifications: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guestgate_fallback_classifications_total",
			Help: "Total number of classifications served from the static allowlist",
		}),
		QuotaRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guestgate_quota_rejections_total",
			Help: "Total number of referrals rejected for exhausted quota",
		}),
	}
}
