package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the shell.
type Metrics struct {
	SignIns               prometheus.Counter
	SignOuts              prometheus.Counter
	ProfileLookups        prometheus.Counter
	ProfileLookupFailures prometheus.Counter
	ProfilesRegistered    prometheus.Counter
	ProfilesUpdated       prometheus.Counter
	GuardRedirects        *prometheus.CounterVec
	StaleLookupsDiscarded prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SignIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrin_signins_total",
			Help: "Total successful sign-ins",
		}),
		SignOuts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrin_signouts_total",
			Help: "Total sign-outs",
		}),
		ProfileLookups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrin_profile_lookups_total",
			Help: "Total profile existence lookups issued by the state machine",
		}),
		ProfileLookupFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrin_profile_lookups_failed_total",
			Help: "Profile lookups that failed and fell back to the incomplete state",
		}),
		ProfilesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrin_profiles_registered_total",
			Help: "Total profiles created through the registration flow",
		}),
		ProfilesUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrin_profiles_updated_total",
			Help: "Total profile edits persisted",
		}),
		GuardRedirects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitrin_guard_redirects_total",
			Help: "Route guard redirect decisions by target path",
		}, []string{"target"}),
		StaleLookupsDiscarded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrin_stale_lookups_discarded_total",
			Help: "Profile lookup results discarded because a newer identity event arrived",
		}),
	}
}
