package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_syncs_total",
			Help: "Lead submissions pushed to the CRM, by outcome",
		},
		[]string{"outcome"},
	)

	tokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_token_refreshes_total",
			Help: "CRM access token exchanges, by status",
		},
		[]string{"status"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

func RecordLeadSync(outcome string) {
	leadSyncs.WithLabelValues(outcome).Inc()
}

func RecordTokenRefresh(status string) {
	tokenRefreshes.WithLabelValues(status).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
