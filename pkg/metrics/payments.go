package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PaymentsInitiated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payments",
			Subsystem: "core",
			Name:      "initiated_total",
			Help:      "Total number of payment initiations",
		},
		[]string{"outcome"},
	)

	GatewayCallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payments",
			Subsystem: "core",
			Name:      "gateway_callbacks_total",
			Help:      "Total number of gateway callbacks by reconciliation outcome",
		},
		[]string{"outcome"},
	)

	EscrowReleases = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payments",
			Subsystem: "escrow",
			Name:      "releases_total",
			Help:      "Total number of escrow holds released",
		},
	)

	EscrowReleasedAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payments",
			Subsystem: "escrow",
			Name:      "released_amount_cents_total",
			Help:      "Total seller payout released from escrow, in minor currency units",
		},
	)
)

func init() {
	Registry.MustRegister(PaymentsInitiated, GatewayCallbacks, EscrowReleases, EscrowReleasedAmount)
}
